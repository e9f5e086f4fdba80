package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/vladislavdragonenkov/shoplab/internal/domain"
)

var (
	errNotObject = errors.New("body is not a JSON object")
	errEmpty     = errors.New("body is an empty JSON object")
)

// decodeObject читает тело как JSON-объект. Поля со значением null
// считаются непереданными.
func decodeObject(w http.ResponseWriter, r *http.Request) (map[string]json.RawMessage, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '{' {
		return nil, errNotObject
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		return nil, err
	}
	for key, raw := range obj {
		if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			delete(obj, key)
		}
	}
	return obj, nil
}

// decodeNonEmptyObject как decodeObject, но пустой объект тоже ошибка.
func decodeNonEmptyObject(w http.ResponseWriter, r *http.Request) (map[string]json.RawMessage, error) {
	obj, err := decodeObject(w, r)
	if err != nil {
		return nil, err
	}
	if len(obj) == 0 {
		return nil, errEmpty
	}
	return obj, nil
}

func optionalField[T any](obj map[string]json.RawMessage, key string) (*T, error) {
	raw, ok := obj[key]
	if !ok {
		return nil, nil
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func productFields(obj map[string]json.RawMessage) (domain.ProductFields, error) {
	var (
		fields domain.ProductFields
		err    error
	)
	if fields.Name, err = optionalField[string](obj, "name"); err != nil {
		return domain.ProductFields{}, err
	}
	if fields.Price, err = optionalField[float64](obj, "price"); err != nil {
		return domain.ProductFields{}, err
	}
	if fields.Available, err = optionalField[bool](obj, "available"); err != nil {
		return domain.ProductFields{}, err
	}
	return fields, nil
}

// orderFields разбирает поля заказа. Позиция без product_id допустима
// на этом этапе: её отклоняет сервис с собственным сообщением.
func orderFields(obj map[string]json.RawMessage) (domain.OrderFields, error) {
	var (
		fields domain.OrderFields
		err    error
	)
	if fields.CustomerName, err = optionalField[string](obj, "customer_name"); err != nil {
		return domain.OrderFields{}, err
	}
	if fields.Status, err = optionalField[string](obj, "status"); err != nil {
		return domain.OrderFields{}, err
	}

	items, err := optionalField[[]map[string]json.RawMessage](obj, "items")
	if err != nil {
		return domain.OrderFields{}, err
	}
	if items != nil {
		fields.ItemsSet = true
		fields.Items = make([]domain.ItemRef, 0, len(*items))
		for _, item := range *items {
			var ref domain.ItemRef
			if item != nil {
				if raw, ok := item["product_id"]; ok && !bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
					var id int64
					if err := json.Unmarshal(raw, &id); err != nil {
						return domain.OrderFields{}, err
					}
					ref.ProductID = &id
				}
			}
			fields.Items = append(fields.Items, ref)
		}
	}
	return fields, nil
}

// pathID разбирает {id} из пути. Нецелый id означает отсутствующую запись.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
