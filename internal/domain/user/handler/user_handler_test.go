package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"anonboard/internal/domain/user/usertest"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func adminRouter(ids *usertest.Identity) *gin.Engine {
	h := NewUserHandler(ids)
	r := gin.New()
	r.POST("/admin/users/:id/promote", h.PromoteUser)
	r.PUT("/admin/users/:id/type", h.UpdateUserType)
	return r
}

func send(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPromoteUser(t *testing.T) {
	ctx := context.Background()

	t.Run("regular user becomes admin", func(t *testing.T) {
		ids := usertest.NewIdentity().Add("u1", "Quiet_AB12")
		w := send(adminRouter(ids), http.MethodPost, "/admin/users/u1/promote", "")
		assert.Equal(t, http.StatusOK, w.Code)

		r, err := ids.ResolveRequestor(ctx, "u1")
		require.NoError(t, err)
		assert.True(t, r.IsAdmin)
	})

	t.Run("banned user", func(t *testing.T) {
		ids := usertest.NewIdentity().Add("u1", "Quiet_AB12")
		ids.SetBanned("u1", true)
		w := send(adminRouter(ids), http.MethodPost, "/admin/users/u1/promote", "")
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("unknown user", func(t *testing.T) {
		w := send(adminRouter(usertest.NewIdentity()), http.MethodPost, "/admin/users/ghost/promote", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestUpdateUserType(t *testing.T) {
	ctx := context.Background()

	t.Run("upgrade to premium", func(t *testing.T) {
		ids := usertest.NewIdentity().Add("u1", "Quiet_AB12")
		w := send(adminRouter(ids), http.MethodPut, "/admin/users/u1/type", `{"userType":"PREMIUM"}`)
		assert.Equal(t, http.StatusOK, w.Code)

		r, err := ids.ResolveRequestor(ctx, "u1")
		require.NoError(t, err)
		assert.True(t, r.IsPremium)
	})

	t.Run("unknown type is rejected at binding", func(t *testing.T) {
		ids := usertest.NewIdentity().Add("u1", "Quiet_AB12")
		w := send(adminRouter(ids), http.MethodPut, "/admin/users/u1/type", `{"userType":"GOLD"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing body", func(t *testing.T) {
		ids := usertest.NewIdentity().Add("u1", "Quiet_AB12")
		w := send(adminRouter(ids), http.MethodPut, "/admin/users/u1/type", `{}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
