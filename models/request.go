package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingField is returned when a required request field is empty.
var ErrMissingField = errors.New("missing required field")

// IntegrationRequest describes the integration a user asked for.
type IntegrationRequest struct {
	ServiceName        string   `json:"service_name" yaml:"service_name"`
	IntegrationType    string   `json:"integration_type" yaml:"integration_type"`
	Description        string   `json:"description" yaml:"description"`
	AuthenticationType string   `json:"authentication_type,omitempty" yaml:"authentication_type,omitempty"`
	SpecificEndpoints  []string `json:"specific_endpoints,omitempty" yaml:"specific_endpoints,omitempty"`
}

// Validate checks that the service name and integration type are set.
func (r IntegrationRequest) Validate() error {
	if strings.TrimSpace(r.ServiceName) == "" {
		return fmt.Errorf("%w: service_name", ErrMissingField)
	}
	if strings.TrimSpace(r.IntegrationType) == "" {
		return fmt.Errorf("%w: integration_type", ErrMissingField)
	}
	return nil
}

// Normalize validates the request and returns a cleaned copy: fields trimmed,
// integration and authentication types lower-cased, authentication defaulting to "none".
func (r IntegrationRequest) Normalize() (IntegrationRequest, error) {
	if err := r.Validate(); err != nil {
		return IntegrationRequest{}, err
	}

	out := IntegrationRequest{
		ServiceName:        strings.TrimSpace(r.ServiceName),
		IntegrationType:    strings.ToLower(strings.TrimSpace(r.IntegrationType)),
		Description:        strings.TrimSpace(r.Description),
		AuthenticationType: strings.ToLower(strings.TrimSpace(r.AuthenticationType)),
	}
	if out.AuthenticationType == "" {
		out.AuthenticationType = "none"
	}
	for _, ep := range r.SpecificEndpoints {
		if ep = strings.TrimSpace(ep); ep != "" {
			out.SpecificEndpoints = append(out.SpecificEndpoints, ep)
		}
	}
	return out, nil
}
