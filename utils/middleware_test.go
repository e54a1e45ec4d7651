package utils

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

// buildAuthApp wires the real role middlewares behind an HS256 verifier, the
// same chain main.go builds, with probe handlers reporting the caller info.
func buildAuthApp() *iris.Application {
	os.Setenv("ACCESS_TOKEN_SECRET", "testsecret")
	app := iris.New()

	verifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	verifyMiddleware := verifier.Verify(func() interface{} { return new(AccessToken) })

	whoami := func(ctx iris.Context) {
		ctx.JSON(iris.Map{"id": CallerID(ctx), "role": CallerRole(ctx)})
	}

	app.Get("/me", verifyMiddleware, UserIDFromTokenMiddleware, whoami)
	app.Get("/landlord", verifyMiddleware, LandlordOnlyMiddleware, whoami)
	app.Get("/admin", verifyMiddleware, AdminOnlyMiddleware, whoami)
	if err := app.Build(); err != nil {
		panic(err)
	}
	return app
}

func signToken(id uint, role string) string {
	signer := jwt.NewSigner(jwt.HS256, os.Getenv("ACCESS_TOKEN_SECRET"), 0)
	token, _ := signer.Sign(AccessToken{ID: id, Role: role})
	return string(token)
}

func get(app *iris.Application, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)
	return resp
}

func TestAuthRequiresToken(t *testing.T) {
	app := buildAuthApp()

	if resp := get(app, "/me", ""); resp.Code == http.StatusOK {
		t.Fatalf("expected non-200 without token, got %d", resp.Code)
	}
	if resp := get(app, "/me", "not-a-jwt"); resp.Code == http.StatusOK {
		t.Fatalf("expected non-200 with garbage token, got %d", resp.Code)
	}
}

func TestLandlordMiddlewareRoles(t *testing.T) {
	app := buildAuthApp()

	if resp := get(app, "/landlord", signToken(1, "tenant")); resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for tenant, got %d", resp.Code)
	}
	if resp := get(app, "/landlord", signToken(2, "landlord")); resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for landlord, got %d", resp.Code)
	}
	// Admins pass landlord gates too.
	if resp := get(app, "/landlord", signToken(3, "admin")); resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin, got %d", resp.Code)
	}
}

func TestAdminMiddlewareRoles(t *testing.T) {
	app := buildAuthApp()

	if resp := get(app, "/admin", signToken(1, "landlord")); resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for landlord, got %d", resp.Code)
	}
	if resp := get(app, "/admin", signToken(1, "admin")); resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin, got %d", resp.Code)
	}
}

func TestCallerIdentityFromToken(t *testing.T) {
	app := buildAuthApp()

	resp := get(app, "/me", signToken(42, "tenant"))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	body := resp.Body.String()
	if want := `"id":42`; !strings.Contains(body, want) {
		t.Errorf("body %s missing %s", body, want)
	}
	if want := `"role":"tenant"`; !strings.Contains(body, want) {
		t.Errorf("body %s missing %s", body, want)
	}
}
