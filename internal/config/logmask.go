// SPDX-License-Identifier: MIT

package config

import (
	"net/url"
	"reflect"
	"strings"
)

// sensitiveKeywords mark field names whose values are masked.
var sensitiveKeywords = []string{"password", "passwd", "secret", "token", "apikey", "api_key", "credential"}

const masked = "***"

// MaskSecrets renders data as maps and slices with sensitive fields masked
// and credentials stripped from URL-looking strings. Suitable for logging
// the effective configuration.
func MaskSecrets(data any) any {
	return maskValue(reflect.ValueOf(data))
}

func maskValue(val reflect.Value) any {
	for val.Kind() == reflect.Pointer || val.Kind() == reflect.Interface {
		if val.IsNil() {
			return nil
		}
		val = val.Elem()
	}

	switch val.Kind() {
	case reflect.Invalid:
		return nil
	case reflect.String:
		return MaskURL(val.String())
	case reflect.Map:
		out := make(map[string]any, val.Len())
		iter := val.MapRange()
		for iter.Next() {
			key := iter.Key().String()
			out[key] = maskField(key, iter.Value())
		}
		return out
	case reflect.Slice, reflect.Array:
		out := make([]any, val.Len())
		for i := range out {
			out[i] = maskValue(val.Index(i))
		}
		return out
	case reflect.Struct:
		out := make(map[string]any)
		typ := val.Type()
		for i := 0; i < val.NumField(); i++ {
			field := typ.Field(i)
			if !field.IsExported() {
				continue
			}
			out[field.Name] = maskField(field.Name, val.Field(i))
		}
		return out
	default:
		return val.Interface()
	}
}

func maskField(name string, v reflect.Value) any {
	if isSensitiveKey(name) {
		for v.Kind() == reflect.Interface && !v.IsNil() {
			v = v.Elem()
		}
		if v.Kind() == reflect.String && v.String() == "" {
			return ""
		}
		return masked
	}
	return maskValue(v)
}

func isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, kw := range sensitiveKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// MaskURL hides the password of a URL. Strings that are not URLs with
// userinfo are returned unchanged.
func MaskURL(raw string) string {
	if !strings.Contains(raw, "@") || !strings.Contains(raw, "://") {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	return u.Redacted()
}
