package handler

//go:generate mockgen -source=handler.go -destination=mocks/handler_mock.go -package=mocks Service

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"farmgate/internal/identity"
	"farmgate/internal/links"
	"farmgate/internal/sites/handler/mocks"
	"farmgate/internal/sites/models"
	"farmgate/internal/summary"
	dErrors "farmgate/pkg/domain-errors"
	"farmgate/pkg/requestcontext"
)

type HandlerSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	service *mocks.MockService
	router  chi.Router
}

func (s *HandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.service = mocks.NewMockService(s.ctrl)

	h := New(s.service, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
	s.router = chi.NewRouter()
	h.Register(s.router)
}

func (s *HandlerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) get(path string, id *identity.Identity) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	ctx := requestcontext.WithClientMetadata(req.Context(), requestcontext.ClientMetadata{
		IP:   "203.0.113.7",
		Host: "panel.example.com",
	})
	if id != nil {
		ctx = identity.WithContext(ctx, *id)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req.WithContext(ctx))
	return rec
}

func contractor() identity.Identity {
	return identity.New("jdoe", "jdoe@example.com", []string{"contractor-site-acme"})
}

func (s *HandlerSuite) TestListSites() {
	id := contractor()
	listing := models.Listing{
		Sites: []models.SiteView{{
			TenantID:     "acme",
			DisplayName:  "Acme Corp",
			SchemaName:   "wp_site_acme",
			FilePath:     "/srv/sites/wp-site-acme",
			Stats:        summary.SiteStats{Users: 3, Posts: 12},
			Access:       links.AccessLinks{Files: "https://files.example.com/?path=/wp-site-acme"},
			Capabilities: []string{"database", "files"},
		}},
		Count: 1,
		User:  "jdoe",
	}
	s.service.EXPECT().
		ListSites(gomock.Any(), id, "panel.example.com").
		Return(listing, nil)

	rec := s.get("/api/sites", &id)
	s.Require().Equal(http.StatusOK, rec.Code)

	var got models.Listing
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &got))
	s.Equal(listing, got)
}

func (s *HandlerSuite) TestListSitesCatalogOutage() {
	id := contractor()
	s.service.EXPECT().
		ListSites(gomock.Any(), id, gomock.Any()).
		Return(models.Listing{}, dErrors.New(dErrors.CodeCatalogUnavailable, "cannot enumerate sites"))

	rec := s.get("/api/sites", &id)
	s.Equal(http.StatusInternalServerError, rec.Code)

	var resp map[string]string
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Equal(string(dErrors.CodeCatalogUnavailable), resp["error"])
}

func (s *HandlerSuite) TestGetSite() {
	id := contractor()
	view := models.SiteView{TenantID: "acme", SchemaName: "wp_site_acme", Capabilities: []string{"database", "files"}}
	s.service.EXPECT().
		GetSite(gomock.Any(), id, "acme", "panel.example.com").
		Return(view, nil)

	rec := s.get("/api/sites/acme", &id)
	s.Require().Equal(http.StatusOK, rec.Code)

	var got models.SiteResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &got))
	s.Equal(view, got.Site)
}

func (s *HandlerSuite) TestGetSiteNotFound() {
	id := contractor()
	s.service.EXPECT().
		GetSite(gomock.Any(), id, "ghost", gomock.Any()).
		Return(models.SiteView{}, dErrors.New(dErrors.CodeNotFound, "site not found"))

	rec := s.get("/api/sites/ghost", &id)
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *HandlerSuite) TestGetSiteAccessDenied() {
	id := contractor()
	s.service.EXPECT().
		GetSite(gomock.Any(), id, "other", gomock.Any()).
		Return(models.SiteView{}, dErrors.New(dErrors.CodeAccessDenied, "not authorized for this site"))

	rec := s.get("/api/sites/other", &id)
	s.Equal(http.StatusForbidden, rec.Code)
}

func (s *HandlerSuite) TestProfile() {
	id := contractor()
	profile := models.Profile{
		User: models.ProfileUser{
			Username: "jdoe",
			Groups:   []string{"contractor-site-acme"},
		},
		Permissions: models.ProfilePermissions{
			CanEditFiles:    true,
			CanEditDatabase: true,
		},
	}
	s.service.EXPECT().Profile(id).Return(profile)

	rec := s.get("/api/user/profile", &id)
	s.Require().Equal(http.StatusOK, rec.Code)

	var got models.Profile
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &got))
	s.Equal(profile, got)
}

func (s *HandlerSuite) TestMissingIdentityIsInternalError() {
	// Routes are mounted behind RequireIdentity; reaching a handler
	// without an identity in context means broken wiring.
	rec := s.get("/api/sites", nil)
	s.Equal(http.StatusInternalServerError, rec.Code)
}
