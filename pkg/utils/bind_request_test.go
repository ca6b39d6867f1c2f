package utils

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type createWidgetRequest struct {
	Name  string `json:"name" validate:"required"`
	Count int    `json:"count" validate:"gte=0"`
}

func bind(t *testing.T, body string) (createWidgetRequest, error) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/widgets", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := e.NewContext(req, httptest.NewRecorder())
	return BindRequest[createWidgetRequest](c)
}

func TestBindRequestDecodesValidBody(t *testing.T) {
	out, err := bind(t, `{"name": "sprocket", "count": 3}`)
	require.NoError(t, err)
	assert.Equal(t, "sprocket", out.Name)
	assert.Equal(t, 3, out.Count)
}

func TestBindRequestRejectsMissingRequiredField(t *testing.T) {
	_, err := bind(t, `{"count": 3}`)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, httperror.GetStatusCode(err))
	assert.Contains(t, err.Error(), "field 'Name' failed rule 'required'")
}

func TestBindRequestRejectsFailedRule(t *testing.T) {
	_, err := bind(t, `{"name": "sprocket", "count": -1}`)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, httperror.GetStatusCode(err))
	assert.Contains(t, err.Error(), "field 'Count' failed rule 'gte'")
}

func TestBindRequestRejectsMalformedBody(t *testing.T) {
	_, err := bind(t, `{"name": `)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, httperror.GetStatusCode(err))
}
