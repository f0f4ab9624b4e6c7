package dto

import (
	"encoding/json"
	"fmt"
	"time"
)

// InstanceDefinition definición deseada de una instancia en create/update de
// empresa. ID es opcional: cuando viene, el allocator matchea contra esa
// instancia exacta; sin ID el pareo es posicional (clientes legacy reenvían
// la lista completa en orden estable).
type InstanceDefinition struct {
	ID          *int64  `json:"id,omitempty"`
	Name        string  `json:"name"`
	InstanceKey string  `json:"instance_key"`
	APIKey      *string `json:"api_key,omitempty"` // tri-estado: ausente=mantener, ""=borrar, valor=setear
}

// DecodeInstanceDefinitions acepta las dos formas históricas del campo
// instances: un array JSON directo o un string conteniendo el array
// serializado (clientes antiguos lo mandaban doble-encodeado).
func DecodeInstanceDefinitions(raw json.RawMessage) ([]InstanceDefinition, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var defs []InstanceDefinition
	if err := json.Unmarshal(raw, &defs); err == nil {
		return defs, nil
	}
	var encoded string
	if err := json.Unmarshal(raw, &encoded); err != nil {
		return nil, fmt.Errorf("instances no es array ni string JSON: %w", err)
	}
	if encoded == "" {
		return nil, nil
	}
	if err := json.Unmarshal([]byte(encoded), &defs); err != nil {
		return nil, fmt.Errorf("instances (string) malformado: %w", err)
	}
	return defs, nil
}

// UpdateInstanceRequest actualización directa de una instancia.
type UpdateInstanceRequest struct {
	Name        *string `json:"name"`
	InstanceKey *string `json:"instance_key"`
	APIKey      *string `json:"api_key"`
}

// InstanceResponse instancia en respuestas HTTP. APIKey sale redactado.
type InstanceResponse struct {
	ID          int64     `json:"id"`
	CompanyID   int64     `json:"company_id"`
	Name        string    `json:"name"`
	InstanceKey string    `json:"instance_key"`
	APIKey      string    `json:"api_key,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// InstanceListResponse listado de instancias de una empresa.
type InstanceListResponse struct {
	Items  []InstanceResponse `json:"items"`
	Synced bool               `json:"synced"`
}
