// Package result hands a prediction from the submission flow to the result
// view through the URL and presents it back verbatim.
package result

import (
	"net/url"
	"strings"
)

// QueryParam carries the prediction in the result URL.
const QueryParam = "prediction"

// View is what the result page renders. Present is false when the page was
// opened without a prior submission.
type View struct {
	Prediction string `json:"prediction"`
	Present    bool   `json:"present"`
}

// componentUnescapes undoes the escapes QueryEscape applies to characters
// encodeURIComponent leaves alone.
var componentUnescapes = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// Encode escapes a prediction the way encodeURIComponent does: spaces become
// %20 rather than '+'.
func Encode(prediction string) string {
	return componentUnescapes.Replace(url.QueryEscape(prediction))
}

// URL builds the result location for prediction under path.
func URL(path, prediction string) string {
	if path == "" {
		path = "/result"
	}
	return path + "?" + QueryParam + "=" + Encode(prediction)
}

// FromQuery reads the prediction from decoded query values.
func FromQuery(values url.Values) View {
	if values == nil {
		return View{}
	}
	raw, ok := values[QueryParam]
	if !ok || len(raw) == 0 {
		return View{}
	}
	return View{Prediction: raw[0], Present: true}
}

// Present renders a prediction that may be absent.
func Present(prediction string, ok bool) View {
	if !ok {
		return View{}
	}
	return View{Prediction: prediction, Present: true}
}
