package spotify

import (
	"net/http"

	"github.com/goccy/go-json"
)

func decodeJSON(req *http.Request, v any) error {
	defer req.Body.Close()
	return json.NewDecoder(req.Body).Decode(v)
}
