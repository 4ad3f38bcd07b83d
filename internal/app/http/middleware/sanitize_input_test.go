package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func echoRouter() *gin.Engine {
	r := gin.New()
	r.Use(SanitizeAndCleanInputMiddleware())
	echo := func(c *gin.Context) {
		b, _ := io.ReadAll(c.Request.Body)
		c.Data(http.StatusOK, "application/json", b)
	}
	r.POST("/echo", echo)
	r.GET("/echo", echo)
	return r
}

func post(r http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestSanitize_StripsMarkup(t *testing.T) {
	rr := post(echoRouter(), `{"name":"<script>alert(1)</script>Ada","email":" a@x.com "}`)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"name":"Ada","email":"a@x.com"}`, rr.Body.String())
}

func TestSanitize_KeepsPlainTextAsTyped(t *testing.T) {
	rr := post(echoRouter(), `{"email":"o'neil&co@x.com","name":"Tom & Jerry","surname":"O'Brien <i>x</i>"}`)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"email":"o'neil&co@x.com","name":"Tom & Jerry","surname":"O'Brien x"}`, rr.Body.String())
}

func TestSanitize_KeepsSecretsAndNumbers(t *testing.T) {
	rr := post(echoRouter(), `{"password":"<b>&pw</b>","new_password":"a&b","code":"123456","route_ids":[1,2,12345678901]}`)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"password":"<b>&pw</b>","new_password":"a&b","code":"123456","route_ids":[1,2,12345678901]}`, rr.Body.String())
}

func TestSanitize_EmptyBodyPassesThrough(t *testing.T) {
	rr := post(echoRouter(), "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, rr.Body.String())
}

func TestSanitize_MalformedJSON(t *testing.T) {
	rr := post(echoRouter(), "{nope")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"error":"Malformed JSON"}`, rr.Body.String())
}

func TestSanitize_IgnoresGET(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/echo", nil)
	rr := httptest.NewRecorder()
	echoRouter().ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}
