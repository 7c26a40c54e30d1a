package api

import (
	"context"
	"errors"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/Sternrassler/hepatodb-client/pkg/expression"
	"github.com/Sternrassler/hepatodb-client/pkg/record"
	"github.com/Sternrassler/hepatodb-client/pkg/resource"
	"github.com/Sternrassler/hepatodb-client/pkg/screen"
)

// liverField holds the TPM measurement of tpm rows.
const liverField = "liver"

// ResourceResponse describes one collection.
type ResourceResponse struct {
	Name     string   `json:"name" example:"protein-interaction"`
	Title    string   `json:"title"`
	Paged    bool     `json:"paged"`
	Fields   []string `json:"fields"`
	Filters  []string `json:"filters"`
	Required string   `json:"required,omitempty" doc:"filter that must be non-blank"`
	Options  []string `json:"options" doc:"keys of the autocomplete suggestions"`
}

type ResourcesOutput struct {
	Body []ResourceResponse
}

func (s *Server) listResources(ctx context.Context, input *struct{}) (*ResourcesOutput, error) {
	out := &ResourcesOutput{Body: make([]ResourceResponse, 0)}
	for _, res := range resource.All() {
		out.Body = append(out.Body, ResourceResponse{
			Name:     res.Name,
			Title:    res.Title,
			Paged:    res.Paged,
			Fields:   res.Fields,
			Filters:  nonNil(res.Filters),
			Required: res.Required,
			Options:  nonNil(res.OptionKeys),
		})
	}
	return out, nil
}

type resourceInput struct {
	Resource string `path:"resource" example:"drugs" doc:"catalog name of the collection"`
}

type OptionsOutput struct {
	Body map[string][]string `doc:"autocomplete suggestions keyed by option key"`
}

func (s *Server) getOptions(ctx context.Context, input *resourceInput) (*OptionsOutput, error) {
	res, err := lookup(input.Resource)
	if err != nil {
		return nil, err
	}

	opts, err := s.backend.Options(ctx, res)
	if err != nil {
		s.logger.Error().Err(err).Str("resource", res.Name).Msg("Options fetch failed")
		return nil, huma.Error502BadGateway(screen.FailureMessage)
	}
	return &OptionsOutput{Body: opts}, nil
}

type RecordsInput struct {
	Resource string `path:"resource" example:"metabolites"`
	Name     string `query:"name" doc:"gene name (tpm)"`
	Disease  string `query:"disease"`
	Protein1 string `query:"protein1"`
	Protein2 string `query:"protein2"`
}

func (in RecordsInput) query() resource.Query {
	return queryOf(in.Name, in.Disease, in.Protein1, in.Protein2)
}

// RecordsResponse is a collected result set. Absent fields are rendered as
// "null".
type RecordsResponse struct {
	Resource string              `json:"resource"`
	Count    int                 `json:"count"`
	Message  string              `json:"message,omitempty" doc:"no-data notice when count is 0"`
	Fields   []string            `json:"fields"`
	Rows     []map[string]string `json:"rows"`
	Summary  *expression.Summary `json:"summary,omitempty" doc:"liver TPM statistics (tpm only)"`
}

type RecordsOutput struct {
	Body RecordsResponse
}

func (s *Server) getRecords(ctx context.Context, input *RecordsInput) (*RecordsOutput, error) {
	res, err := lookup(input.Resource)
	if err != nil {
		return nil, err
	}

	query := input.query().Restrict(res)
	if res.Required != "" && query.IsBlank(res.Required) {
		return nil, huma.Error400BadRequest(res.NoInputMessage)
	}

	records, err := s.backend.Collect(ctx, res, query)
	if err != nil {
		s.logger.Error().Err(err).Str("resource", res.Name).Str("query", query.String()).Msg("Collect failed")
		return nil, huma.Error502BadGateway(screen.FailureMessage)
	}

	return &RecordsOutput{Body: recordsResponse(res, records)}, nil
}

func recordsResponse(res resource.Resource, records []record.Record) RecordsResponse {
	body := RecordsResponse{
		Resource: res.Name,
		Count:    len(records),
		Fields:   res.Fields,
		Rows:     record.Render(records),
	}
	if body.Rows == nil {
		body.Rows = []map[string]string{}
	}
	if len(records) == 0 {
		body.Message = res.EmptyMessage
	}
	if res.Name == resource.TPM.Name && len(records) > 0 {
		summary := expression.SummarizeField(records, liverField)
		body.Summary = &summary
	}
	return body
}

type ClassifyInput struct {
	Value string `query:"value" required:"true" example:"12.5" doc:"TPM value"`
}

type ClassifyResponse struct {
	Value float64          `json:"value"`
	Level expression.Level `json:"level"`
}

type ClassifyOutput struct {
	Body ClassifyResponse
}

func (s *Server) classify(ctx context.Context, input *ClassifyInput) (*ClassifyOutput, error) {
	v := record.String(strings.TrimSpace(input.Value))
	level, err := expression.ClassifyValue(v)
	if err != nil {
		return nil, huma.Error400BadRequest("value must be a number")
	}
	f, _ := v.Float64()
	return &ClassifyOutput{Body: ClassifyResponse{Value: f, Level: level}}, nil
}

func lookup(name string) (resource.Resource, error) {
	res, err := resource.Lookup(name)
	if errors.Is(err, resource.ErrUnknownResource) {
		return resource.Resource{}, huma.Error404NotFound(err.Error())
	}
	return res, err
}

func queryOf(name, disease, protein1, protein2 string) resource.Query {
	q := resource.Query{}
	for key, value := range map[string]string{
		resource.FilterName:     name,
		resource.FilterDisease:  disease,
		resource.FilterProtein1: protein1,
		resource.FilterProtein2: protein2,
	} {
		if value != "" {
			q[key] = value
		}
	}
	return q
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
