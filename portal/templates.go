package portal

import (
	"context"
	"fmt"

	"github.com/karlisv/fplbrief/fpl"
)

// TemplateInfo is one entry of the stored flight-plan template list.
type TemplateInfo struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Template is a stored flight-plan template with its full form data.
type Template struct {
	ID   int         `json:"id"`
	Name string      `json:"name"`
	Plan fpl.FplData `json:"plan"`
}

// GetFlTplList returns the session's stored templates.
func (c *Client) GetFlTplList(ctx context.Context, creds Credentials) ([]TemplateInfo, error) {
	body, err := c.call(ctx, creds, "GetFlTplListRequest", "", true)
	if err != nil {
		return nil, err
	}
	var templates []TemplateInfo
	for _, block := range tagBlocks(body, "Template") {
		templates = append(templates, TemplateInfo{
			ID:   intValue(block, "ID"),
			Name: tagValue(block, "Name"),
		})
	}
	return templates, nil
}

// GetFlTpl returns one stored template with its flight-plan form data.
func (c *Client) GetFlTpl(ctx context.Context, creds Credentials, id int) (*Template, error) {
	body, err := c.call(ctx, creds, "GetFlTplRequest", elem("ID", fmt.Sprintf("%d", id)), true)
	if err != nil {
		return nil, err
	}
	return &Template{
		ID:   intValue(body, "ID"),
		Name: tagValue(body, "Name"),
		Plan: fpl.FplData{
			AircraftID:      tagValue(body, "AircraftIdentification"),
			FlightRules:     tagValue(body, "FlightRules"),
			FlightType:      tagValue(body, "TypeOfFlight"),
			Number:          tagValue(body, "Number"),
			AircraftType:    tagValue(body, "TypeOfAircraft"),
			WakeTurbulence:  tagValue(body, "WakeTurbulenceCat"),
			Equipment:       tagValue(body, "Equipment"),
			Departure:       tagValue(body, "DepartureAerodrome"),
			DepartureTime:   tagValue(body, "TimeOfDeparture"),
			Speed:           tagValue(body, "CruisingSpeed"),
			Level:           tagValue(body, "FlightLevel"),
			Route:           tagValue(body, "Route"),
			Destination:     tagValue(body, "DestinationAerodrome"),
			TotalEET:        tagValue(body, "TotalEET"),
			Alternate:       tagValue(body, "AlternateAerodrome"),
			SecondAlternate: tagValue(body, "SecondAlternateAerodrome"),
			Field18:         tagValue(body, "OtherInformation"),
			Field19:         tagValue(body, "SupplementaryInformation"),
		},
	}, nil
}

// SaveFlTpl stores the flight-plan form data as a named template.
func (c *Client) SaveFlTpl(ctx context.Context, creds Credentials, name string, plan fpl.FplData) (*SubmitResult, error) {
	inner := elem("Name", name) + fplRequestBody(plan)
	body, err := c.call(ctx, creds, "SaveFlTplRequest", inner, false)
	if err != nil {
		return nil, err
	}
	return parseSubmitResult(body), nil
}

// DeleteFlTpl removes a stored template.
func (c *Client) DeleteFlTpl(ctx context.Context, creds Credentials, id int) (*SubmitResult, error) {
	body, err := c.call(ctx, creds, "DeleteFlTplRequest", elem("ID", fmt.Sprintf("%d", id)), false)
	if err != nil {
		return nil, err
	}
	return parseSubmitResult(body), nil
}
