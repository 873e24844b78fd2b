// Package reader loads the JSON input document into a catalogue and answers its stat requests.
//
// The document has four sections:
//
//	base_requests     stops and buses, applied as stops, then distances, then buses
//	stat_requests     Stop, Bus, Route and Map queries
//	routing_settings  bus_wait_time (minutes) and bus_velocity (km/h)
//	render_settings   map geometry and palette
//
// Structural problems are reported by Decode and FillCatalogue and are meant to abort the load.
package reader

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"
	"github.com/passbi/transport_catalogue/internal/models"
)

var validate = validator.New()

// Document is the root of the input document
type Document struct {
	BaseRequests    []BaseRequest           `json:"base_requests" validate:"dive"`
	StatRequests    []StatRequest           `json:"stat_requests" validate:"dive"`
	RenderSettings  *RenderSettings         `json:"render_settings"`
	RoutingSettings *models.RoutingSettings `json:"routing_settings"`
}

// BaseRequest describes either a stop or a bus
type BaseRequest struct {
	Type models.RequestType `json:"type" validate:"required,oneof=Stop Bus"`
	Name string             `json:"name" validate:"required"`

	// Stop fields
	Latitude      *float64       `json:"latitude" validate:"required_if=Type Stop,omitempty,gte=-90,lte=90"`
	Longitude     *float64       `json:"longitude" validate:"required_if=Type Stop,omitempty,gte=-180,lte=180"`
	RoadDistances map[string]int `json:"road_distances" validate:"dive,gte=0"`

	// Bus fields
	Stops       []string `json:"stops" validate:"required_if=Type Bus,dive,required"`
	IsRoundtrip *bool    `json:"is_roundtrip" validate:"required_if=Type Bus"`
}

// StatRequest is a single query against the loaded network
type StatRequest struct {
	ID   int                `json:"id"`
	Type models.RequestType `json:"type" validate:"required,oneof=Stop Bus Map Route"`
	Name string             `json:"name" validate:"required_if=Type Stop,required_if=Type Bus"`
	From string             `json:"from" validate:"required_if=Type Route"`
	To   string             `json:"to" validate:"required_if=Type Route"`
}

// Decode parses and validates an input document
func Decode(r io.Reader) (*Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate checks required fields and value ranges of every section
func (d *Document) Validate() error {
	// nested settings structs are traversed by the validator
	if err := validate.Struct(d); err != nil {
		return fmt.Errorf("invalid document: %w", err)
	}
	return nil
}

// DecodeStatRequest parses and validates a single stat request
func DecodeStatRequest(data []byte) (StatRequest, error) {
	var req StatRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return StatRequest{}, fmt.Errorf("failed to parse stat request: %w", err)
	}
	if err := validate.Struct(req); err != nil {
		return StatRequest{}, fmt.Errorf("invalid stat request: %w", err)
	}
	return req, nil
}

// DecodeStatRequests parses and validates a bare array of stat requests
func DecodeStatRequests(data []byte) ([]StatRequest, error) {
	var requests []StatRequest
	if err := json.Unmarshal(data, &requests); err != nil {
		return nil, fmt.Errorf("failed to parse stat requests: %w", err)
	}
	for i := range requests {
		if err := validate.Struct(requests[i]); err != nil {
			return nil, fmt.Errorf("invalid stat request %d: %w", i, err)
		}
	}
	return requests, nil
}
