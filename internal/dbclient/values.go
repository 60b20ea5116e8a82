package dbclient

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// scalarValue reduces a driver value to the JSON-like scalars the dataset
// pipeline understands: nil, bool, float64 or string. Timestamps become
// RFC 3339 text; composite values become compact JSON text.
func scalarValue(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case bool:
		return val
	case string:
		return val
	case []byte:
		return string(val)
	case float64:
		return finiteOrText(val)
	case float32:
		return finiteOrText(float64(val))
	case int:
		return float64(val)
	case int8:
		return float64(val)
	case int16:
		return float64(val)
	case int32:
		return float64(val)
	case int64:
		return int64Value(val)
	case uint8:
		return float64(val)
	case uint16:
		return float64(val)
	case uint32:
		return float64(val)
	case uint64:
		if val > 1<<53 {
			return strconv.FormatUint(val, 10)
		}
		return float64(val)
	case time.Time:
		return val.UTC().Format(time.RFC3339Nano)
	case bson.ObjectID:
		return val.Hex()
	case bson.DateTime:
		return val.Time().UTC().Format(time.RFC3339Nano)
	case bson.Decimal128:
		return val.String()
	case bson.Null, bson.Undefined:
		return nil
	case bson.D:
		return compactJSON(bsonDocToMap(val))
	case bson.A:
		items := make([]any, len(val))
		for i, item := range val {
			items[i] = nestedValue(item)
		}
		return compactJSON(items)
	default:
		return compactJSON(val)
	}
}

// nestedValue is scalarValue for values inside composites: documents stay
// structured so the outer value serializes once.
func nestedValue(v any) any {
	switch val := v.(type) {
	case bson.D:
		return bsonDocToMap(val)
	case bson.A:
		items := make([]any, len(val))
		for i, item := range val {
			items[i] = nestedValue(item)
		}
		return items
	default:
		return scalarValue(v)
	}
}

func bsonDocToMap(doc bson.D) map[string]any {
	m := make(map[string]any, len(doc))
	for _, elem := range doc {
		m[elem.Key] = nestedValue(elem.Value)
	}
	return m
}

// int64Value keeps integers beyond float64 precision as exact text.
func int64Value(v int64) any {
	if v > 1<<53 || v < -(1<<53) {
		return strconv.FormatInt(v, 10)
	}
	return float64(v)
}

func finiteOrText(f float64) any {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return f
}

func compactJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}
