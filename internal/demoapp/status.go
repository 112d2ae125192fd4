package demoapp

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/vitalvas/automd/endpoint"
	"github.com/vitalvas/automd/responses"
)

const (
	statusOK    = "status check OK"
	defaultText = "Hello AutoMD"
)

// StatusBody is the JSON body returned by POST /status.
type StatusBody struct {
	Response string `json:"response" openapi:"description=Status message,example=status check OK: Hello AutoMD"`
}

type statusRequest struct {
	JSONText string `json:"json_text"`
}

// Status returns the /status resource.
func Status() endpoint.Resource {
	getMeta := endpoint.Meta{
		Parameters: endpoint.Fields{
			endpoint.String("text", endpoint.Description("Text to return"), endpoint.Default(defaultText)),
		},
		Responses:   map[int]any{http.StatusOK: responses.Value("")},
		Summary:     "Status Endpoint",
		Description: "Status Endpoint, responds with a message made from the input string",
	}

	postMeta := endpoint.Meta{
		Parameters: endpoint.Fields{
			endpoint.String("text", endpoint.Description("Text to return"), endpoint.Default(defaultText)),
			endpoint.String("json_text",
				endpoint.In(endpoint.LocationJSON),
				endpoint.Description("Text to return (overrides query parameters)"),
				endpoint.Default(defaultText),
			),
		},
		Responses: map[int]any{
			http.StatusOK:         responses.JSON(StatusBody{}),
			http.StatusBadRequest: responses.Text(""),
		},
		Summary:     "Status Posting",
		Description: "Status Endpoint using post, responds with a message. Json text overrides query text.",
	}

	return endpoint.Resource{
		http.MethodGet:  endpoint.DescribeFunc(getStatus, getMeta),
		http.MethodPost: endpoint.DescribeFunc(postStatus, postMeta),
	}
}

func getStatus(w http.ResponseWriter, r *http.Request) {
	text := statusOK

	if r.URL.Query().Has("text") {
		text += ": " + firstNonEmpty(r.URL.Query().Get("text"), defaultText)
	}

	_ = responses.Value(text).Render(w, http.StatusOK)
}

func postStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		_ = responses.Text("invalid json body").Render(w, http.StatusBadRequest)
		return
	}

	text := statusOK

	if r.URL.Query().Has("text") {
		text += ": " + firstNonEmpty(req.JSONText, r.URL.Query().Get("text"), defaultText)
	}

	_ = responses.JSON(StatusBody{Response: text}).Render(w, http.StatusOK)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
