package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// multipartMemory is how much of a multipart body is buffered in memory
// before file parts spill to temporary files.
const multipartMemory = 32 << 20

// requestForm is a request body reduced to named values and file parts. A key
// present in values was sent by the client, even when its value is empty.
type requestForm struct {
	fields      map[string][]string
	fileHeaders map[string][]*multipart.FileHeader
}

func (f *requestForm) value(key string) string {
	if v := f.fields[key]; len(v) > 0 {
		return v[0]
	}
	return ""
}

func (f *requestForm) values(key string) []string {
	return f.fields[key]
}

func (f *requestForm) files(key string) []*multipart.FileHeader {
	if f.fileHeaders == nil {
		return nil
	}
	return f.fileHeaders[key]
}

// presentFields returns a pointer for every listed key the client sent.
func (f *requestForm) presentFields(keys ...string) map[string]*string {
	out := make(map[string]*string, len(keys))
	for _, k := range keys {
		if v, ok := f.fields[k]; ok {
			s := ""
			if len(v) > 0 {
				s = v[0]
			}
			out[k] = &s
		}
	}
	return out
}

// readForm parses a multipart, urlencoded or JSON body.
func (h *EventHandler) readForm(c *gin.Context) (*requestForm, error) {
	if h.maxUploadBytes > 0 && c.Request.Body != nil {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}

	switch ct := c.ContentType(); {
	case strings.HasPrefix(ct, gin.MIMEMultipartPOSTForm):
		if err := c.Request.ParseMultipartForm(multipartMemory); err != nil {
			return nil, err
		}
		return &requestForm{
			fields:      c.Request.MultipartForm.Value,
			fileHeaders: c.Request.MultipartForm.File,
		}, nil
	case strings.HasPrefix(ct, gin.MIMEJSON):
		fields, err := readJSONFields(c.Request.Body)
		if err != nil {
			return nil, err
		}
		return &requestForm{fields: fields}, nil
	default:
		if err := c.Request.ParseForm(); err != nil {
			return nil, err
		}
		return &requestForm{fields: c.Request.PostForm}, nil
	}
}

// readJSONFields flattens a JSON object into form-style values. null counts
// as present and empty.
func readJSONFields(r io.Reader) (map[string][]string, error) {
	var raw map[string]interface{}
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		if err == io.EOF {
			return map[string][]string{}, nil
		}
		return nil, err
	}

	fields := make(map[string][]string, len(raw))
	for k, v := range raw {
		switch t := v.(type) {
		case nil:
			fields[k] = []string{""}
		case string:
			fields[k] = []string{t}
		case []interface{}:
			vals := make([]string, 0, len(t))
			for _, item := range t {
				vals = append(vals, fmt.Sprint(item))
			}
			fields[k] = vals
		default:
			fields[k] = []string{fmt.Sprint(t)}
		}
	}
	return fields, nil
}
