package oxide

import (
	"encoding/json"
	"fmt"
)

func nativeJsonParse(str string) *ResultObject {
	var data interface{}
	if err := json.Unmarshal([]byte(str), &data); err != nil {
		return ReturnError(fmt.Sprintf("JSON parse error: %v", err))
	}
	return ReturnOk(jsonValueToObject(data))
}

func nativeJsonStringify(val Object) *ResultObject {
	bytes, err := json.Marshal(objectToGoValue(val))
	if err != nil {
		return ReturnError(fmt.Sprintf("JSON stringify error: %v", err))
	}
	return ReturnOkString(string(bytes))
}

// jsonValueToObject converts a value produced by encoding/json's Unmarshal
// into data into an oxide Object tree (maps become MapObj, arrays become
// ArrayObj), shared by json.parse and the http module's req.json().
func jsonValueToObject(val interface{}) Object {
	switch v := val.(type) {
	case string:
		return StringObj{Value: v}
	case float64:
		return NumberObj{Value: v, IsInt: v == float64(int64(v))}
	case bool:
		return BooleanObj{Value: v}
	case nil:
		return NullObj{}
	case map[string]interface{}:
		result := NewMap()
		for key, elem := range v {
			_ = result.Set(StringObj{Value: key}, jsonValueToObject(elem))
		}
		return result
	case []interface{}:
		elements := make([]Object, len(v))
		for i, elem := range v {
			elements[i] = jsonValueToObject(elem)
		}
		return &ArrayObj{Elements: elements}
	default:
		return StringObj{Value: fmt.Sprintf("%v", v)}
	}
}

// objectToGoValue is the inverse of jsonValueToObject: it unwraps an oxide
// Object tree into plain Go values (string/float64/bool/nil/map/slice) so
// encoding/json can marshal it, shared by json.stringify and the http
// module's res.send()/res.sendJson().
func objectToGoValue(obj Object) interface{} {
	switch v := obj.(type) {
	case StringObj:
		return v.Value
	case NumberObj:
		return v.Value
	case BooleanObj:
		return v.Value
	case NullObj:
		return nil
	case *ArrayObj:
		elements := make([]interface{}, len(v.Elements))
		for i, e := range v.Elements {
			elements[i] = objectToGoValue(e)
		}
		return elements
	case *MapObj:
		result := make(map[string]interface{})
		for _, bucket := range v.Pairs {
			for _, pair := range bucket {
				if key, ok := pair.Key.(StringObj); ok {
					result[key.Value] = objectToGoValue(pair.Value)
				}
			}
		}
		return result
	default:
		return obj.String()
	}
}

func init() {
	BuiltinModules["json"] = map[string]any{
		"parse":     nativeJsonParse,
		"stringify": nativeJsonStringify,
	}
}
