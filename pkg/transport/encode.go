package transport

import (
	"encoding/json"
	"net/http"

	"github.com/Shubhamkahar196/CodeFixer/pkg/returntypes"
)

func encodeResponse(w http.ResponseWriter, v interface{}) {
	w.Header().Add("Content-Type", "application/json; charset=UTF-8")
	_ = json.NewEncoder(w).Encode(v)
}

func encodeError(w http.ResponseWriter, err error) {
	terr := MakeError(err)

	w.Header().Add("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(terr.HTTPCode)

	resp := returntypes.Error{
		Error: terr.Message,
	}
	_ = json.NewEncoder(w).Encode(resp)
}
