package stdlib

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/emberlang/ember/internal/value"
	"github.com/emberlang/ember/internal/vm"
)

// registerCloud installs the "cloud" namespace: cloud.dynamoConnect(table)
// builds a default AWS config and a DynamoDB client, returning an
// Instance whose put/get fields are Natives closing directly over that
// client and table name (same per-handle-closure shape db.go uses, for
// the same reason: Ember's INVOKE shortcut never hands a Native its
// receiver). Grounded on cmd/noxy-plugin-dynamodb/main.go's
// handleConnect/handlePutItem/handleGetItem. Kept purely for
// stack-fidelity: the teacher itself ships DynamoDB support as an
// optional plugin process rather than a core VM builtin, and Ember
// mirrors that by keeping it behind this one namespace rather than
// wiring it into the interpreter's hot path.
func registerCloud(m *vm.VM, ns *value.Module) {
	clientClass := m.NewClass("DynamoTable")

	ns.SetField("dynamoConnect", value.ObjValue(m.NewNative("dynamoConnect", 1, func(args []value.Value) (value.Value, error) {
		tableName, ok := asString(args[0])
		if !ok {
			return value.Value{}, fmt.Errorf("cloud.dynamoConnect expects a table name")
		}
		cfg, err := config.LoadDefaultConfig(context.Background())
		if err != nil {
			return value.Value{}, fmt.Errorf("failed to load AWS config: %v", err)
		}
		client := dynamodb.NewFromConfig(cfg)

		inst := m.NewInstance(clientClass)
		inst.SetField("table", value.ObjValue(m.NewString(tableName)))

		inst.SetField("put", value.ObjValue(m.NewNative("put", 1, func(args []value.Value) (value.Value, error) {
			item, ok := args[0].AsObj().(*value.Map)
			if !ok {
				return value.Value{}, fmt.Errorf("put expects a map item")
			}
			av, err := attributevalue.MarshalMap(emberMapToGo(item))
			if err != nil {
				return value.Value{}, fmt.Errorf("failed to marshal item: %v", err)
			}
			_, err = client.PutItem(context.Background(), &dynamodb.PutItemInput{
				TableName: aws.String(tableName),
				Item:      av,
			})
			if err != nil {
				return value.Value{}, err
			}
			return value.BoolValue(true), nil
		})))

		inst.SetField("get", value.ObjValue(m.NewNative("get", 1, func(args []value.Value) (value.Value, error) {
			key, ok := args[0].AsObj().(*value.Map)
			if !ok {
				return value.Value{}, fmt.Errorf("get expects a map key")
			}
			avKey, err := attributevalue.MarshalMap(emberMapToGo(key))
			if err != nil {
				return value.Value{}, fmt.Errorf("failed to marshal key: %v", err)
			}
			out, err := client.GetItem(context.Background(), &dynamodb.GetItemInput{
				TableName: aws.String(tableName),
				Key:       avKey,
			})
			if err != nil {
				return value.Value{}, err
			}
			if out.Item == nil {
				return value.NilValue(), nil
			}
			var resMap map[string]interface{}
			if err := attributevalue.UnmarshalMap(out.Item, &resMap); err != nil {
				return value.Value{}, fmt.Errorf("failed to unmarshal result: %v", err)
			}
			return value.ObjValue(goMapToEmber(m, resMap)), nil
		})))

		return value.ObjValue(inst), nil
	})))
}

// emberMapToGo converts an Ember Map with string keys into a
// map[string]interface{} suitable for attributevalue.MarshalMap.
func emberMapToGo(mp *value.Map) map[string]interface{} {
	out := make(map[string]interface{}, mp.Len())
	for _, k := range mp.Keys() {
		key, ok := asString(k)
		if !ok {
			continue
		}
		v, _ := mp.Get(k)
		out[key] = emberValueToGo(v)
	}
	return out
}

func emberValueToGo(v value.Value) interface{} {
	switch {
	case v.IsNil():
		return nil
	case v.IsBool():
		return v.AsBool()
	case v.IsNumber():
		return v.AsNumber()
	case v.IsObj():
		switch o := v.AsObj().(type) {
		case *value.String:
			return o.Chars
		case *value.Map:
			return emberMapToGo(o)
		}
	}
	return value.ToString(v)
}

// goMapToEmber converts an attributevalue-unmarshaled map[string]interface{}
// back into an Ember Map, mirroring db.go's goToEmber scalar conversion
// plus nested-map/list support (DynamoDB items are commonly nested).
func goMapToEmber(m *vm.VM, gm map[string]interface{}) *value.Map {
	out := m.NewMap()
	for k, v := range gm {
		out.Put(value.ObjValue(m.NewString(k)), goValueToEmber(m, v))
	}
	return out
}

func goValueToEmber(m *vm.VM, v interface{}) value.Value {
	switch tv := v.(type) {
	case nil:
		return value.NilValue()
	case bool:
		return value.BoolValue(tv)
	case string:
		return value.ObjValue(m.NewString(tv))
	case float64:
		return value.NumberValue(tv)
	case int64:
		return value.NumberValue(float64(tv))
	case map[string]interface{}:
		return value.ObjValue(goMapToEmber(m, tv))
	case []interface{}:
		elems := make([]value.Value, len(tv))
		for i, e := range tv {
			elems[i] = goValueToEmber(m, e)
		}
		return value.ObjValue(m.NewList(elems))
	default:
		return value.ObjValue(m.NewString(fmt.Sprintf("%v", tv)))
	}
}
