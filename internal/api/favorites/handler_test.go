package favorites

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"navibu-api/internal/domain/transit"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubRoutes struct {
	err      error
	replaced []uint
	added    [2]uint
}

func (s *stubRoutes) AddFavorite(_ context.Context, userID, routeID uint) error {
	s.added = [2]uint{userID, routeID}
	return s.err
}
func (s *stubRoutes) ListFavorites(context.Context, uint) ([]transit.Favorite, error) {
	return []transit.Favorite{{ID: 2, Name: "34AS"}}, s.err
}
func (s *stubRoutes) GetUserRoutes(context.Context, uint) ([]transit.Route, error) {
	return []transit.Route{}, s.err
}
func (s *stubRoutes) ReplaceUserRoutes(_ context.Context, _ uint, ids []uint) error {
	s.replaced = ids
	return s.err
}
func (s *stubRoutes) ListAllRoutes(context.Context) ([]transit.Route, error) { return nil, s.err }
func (s *stubRoutes) HasSelectedRoutes(context.Context, uint) (bool, error)  { return false, s.err }

func newRouter(h *Handler, asUser uint) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set("user_id", asUser) })
	r.POST("/add", h.AddFavorite)
	r.GET("/fav/:user_id", h.GetFavoriteRoutes)
	r.GET("/user/:user_id/routes", h.GetUserRoutes)
	r.POST("/user/:user_id/routes", h.UpdateUserRoutes)
	r.GET("/routes", h.GetAllRoutes)
	return r
}

func send(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestAddFavorite(t *testing.T) {
	svc := &stubRoutes{}
	r := newRouter(NewHandler(svc), 5)

	rr := send(r, http.MethodPost, "/add", `{"user_id":5,"route_id":9}`)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, [2]uint{5, 9}, svc.added)

	svc.added = [2]uint{}
	rr = send(r, http.MethodPost, "/add", `{"user_id":6,"route_id":9}`)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.JSONEq(t, `{"error":"access denied"}`, rr.Body.String())
	assert.Zero(t, svc.added, "service must not be called for another user")

	rr = send(r, http.MethodPost, "/add", `{"user_id":5}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGetFavoriteRoutesShape(t *testing.T) {
	rr := send(newRouter(NewHandler(&stubRoutes{}), 1), http.MethodGet, "/fav/1", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[{"id":2,"name":"34AS"}]`, rr.Body.String())
}

func TestGetUserRoutesEmpty(t *testing.T) {
	rr := send(newRouter(NewHandler(&stubRoutes{}), 1), http.MethodGet, "/user/1/routes", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"routes":[],"has_selected_routes":false}`, rr.Body.String())
}

func TestUpdateUserRoutes(t *testing.T) {
	svc := &stubRoutes{}
	r := newRouter(NewHandler(svc), 1)

	rr := send(r, http.MethodPost, "/user/1/routes", `{"route_ids":[3,1]}`)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []uint{3, 1}, svc.replaced)

	// chunked upload with nothing in it
	req := httptest.NewRequest(http.MethodPost, "/user/1/routes", strings.NewReader(""))
	req.ContentLength = -1
	req.TransferEncoding = []string{"chunked"}
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, svc.replaced)

	rr = send(r, http.MethodPost, "/user/1/routes", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, svc.replaced)

	rr = send(r, http.MethodPost, "/user/1/routes", `{"route_ids":"3"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = send(r, http.MethodPost, "/user/x/routes", `{"route_ids":[]}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestStorageFailureIsHidden(t *testing.T) {
	r := newRouter(NewHandler(&stubRoutes{err: errors.New("pq: relation \"routes\" does not exist")}), 1)

	rr := send(r, http.MethodGet, "/routes", "")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, rr.Body.String())
}
