package redis

import (
	"context"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// strictJSON 读缓存用，多余字段视为类型不符
var strictJSON = jsoniter.Config{
	EscapeHTML:             true,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	DisallowUnknownFields:  true,
}.Froze()

var cacheValidate = validator.New()

// Cached cache-aside 读取
//   - key 存在且能严格解码为 T（无多余字段，validate 标签通过）时直接返回，不调用 producer
//   - 否则调用 producer，成功后以 ttl 写回；写回失败只记录日志
//   - producer 失败时原样返回错误，不写缓存
//
// 读缓存失败按未命中处理。不做负缓存，也不防击穿：并发未命中会各自调用 producer。
func Cached[T any](ctx context.Context, store CacheService, key string, ttl time.Duration, producer func(ctx context.Context) (T, error)) (T, error) {
	raw, ok, err := store.Get(ctx, key)
	switch {
	case err != nil:
		zap.L().Warn("cache read failed", zap.String("key", key), zap.Error(err))
	case ok:
		if v, decoded := decodeCached[T](raw); decoded {
			return v, nil
		}
		zap.L().Debug("cache entry does not decode, recomputing", zap.String("key", key))
	}

	v, err := producer(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	data, err := json.MarshalToString(v)
	if err != nil {
		zap.L().Warn("cache encode failed", zap.String("key", key), zap.Error(err))
		return v, nil
	}
	if err := store.Set(ctx, key, data, ttl); err != nil {
		zap.L().Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
	return v, nil
}

// decodeCached JSON null 视为无法解码
func decodeCached[T any](raw string) (T, bool) {
	var v T
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || trimmed == "null" {
		return v, false
	}
	if err := strictJSON.UnmarshalFromString(trimmed, &v); err != nil {
		var zero T
		return zero, false
	}
	if err := validateCached(v); err != nil {
		var zero T
		return zero, false
	}
	return v, true
}

// validateCached 校验结构体及 slice/map 中的结构体元素
func validateCached(v any) error {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Struct:
		return cacheValidate.Struct(rv.Interface())
	case reflect.Slice, reflect.Array, reflect.Map:
		elem := rv.Type().Elem()
		for elem.Kind() == reflect.Pointer {
			elem = elem.Elem()
		}
		if elem.Kind() == reflect.Struct && rv.Len() > 0 {
			return cacheValidate.Var(rv.Interface(), "dive")
		}
	}
	return nil
}
