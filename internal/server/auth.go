package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"tailscale.com/client/tailscale/apitype"

	"github.com/meltforce/coachlog/internal/models"
	"github.com/meltforce/coachlog/internal/storage"
)

// Claims are the JWT claims issued by the auth provider. The subject is the
// profile ID.
type Claims struct {
	Email string      `json:"email"`
	Name  string      `json:"name,omitempty"`
	Role  models.Role `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// JWTValidator verifies HS256 bearer tokens.
type JWTValidator struct {
	secret []byte
}

// NewJWTValidator creates a validator for tokens signed with secret.
func NewJWTValidator(secret string) *JWTValidator {
	return &JWTValidator{secret: []byte(secret)}
}

// ValidateToken parses and verifies a token string.
func (v *JWTValidator) ValidateToken(tokenString string) (*Claims, error) {
	if len(v.secret) == 0 {
		return nil, errors.New("jwt secret not configured")
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return nil, fmt.Errorf("invalid subject: %w", err)
	}
	return claims, nil
}

// WhoIsClient resolves a tailnet peer address to its identity.
// *local.Client from tsnet satisfies it.
type WhoIsClient interface {
	WhoIs(ctx context.Context, remoteAddr string) (*apitype.WhoIsResponse, error)
}

type profileKey struct{}

// WithProfile attaches the authenticated profile to ctx.
func WithProfile(ctx context.Context, p *models.Profile) context.Context {
	return context.WithValue(ctx, profileKey{}, p)
}

// ProfileFromContext returns the authenticated profile, if any.
func ProfileFromContext(ctx context.Context) (*models.Profile, bool) {
	p, ok := ctx.Value(profileKey{}).(*models.Profile)
	return p, ok && p != nil
}

// ProfileIDFromRequest returns the ID of the profile making the request.
func ProfileIDFromRequest(r *http.Request) (uuid.UUID, bool) {
	p, ok := ProfileFromContext(r.Context())
	if !ok {
		return uuid.Nil, false
	}
	return p.ID, true
}

// Identity resolves the caller from a bearer token, falling back to the
// tailnet identity when tailscale is enabled.
func (s *Server) Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var (
			profile *models.Profile
			err     error
		)
		if token, ok := bearerToken(r); ok {
			profile, err = s.profileFromToken(r.Context(), token)
			if err != nil {
				s.log.Debug("rejected bearer token", "error", err)
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid token"})
				return
			}
		} else if s.tailscale != nil {
			profile, err = s.profileFromTailnet(r.Context(), r.RemoteAddr)
			if err != nil {
				s.log.Warn("tailscale whois failed", "remote_addr", r.RemoteAddr, "error", err)
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unknown tailnet identity"})
				return
			}
		} else {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing bearer token"})
			return
		}
		next.ServeHTTP(w, r.WithContext(WithProfile(r.Context(), profile)))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	if h == "" {
		return "", false
	}
	token, ok := strings.CutPrefix(h, "Bearer ")
	return strings.TrimSpace(token), ok
}

// profileFromToken validates the token and makes sure the profile row exists.
// The upsert runs once per profile per process.
func (s *Server) profileFromToken(ctx context.Context, token string) (*models.Profile, error) {
	claims, err := s.jwt.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	id := uuid.MustParse(claims.Subject)
	if _, seen := s.known.Load(id); seen {
		return s.db.GetProfile(ctx, id)
	}

	p := models.Profile{ID: id, Email: claims.Email, Role: claims.Role}
	if claims.Name != "" {
		p.FullName = &claims.Name
	}
	profile, err := s.db.UpsertProfile(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("ensuring profile: %w", err)
	}
	s.known.Store(id, struct{}{})
	return profile, nil
}

// tailnetNamespace seeds deterministic profile IDs for tailnet logins.
var tailnetNamespace = uuid.MustParse("6f1c7c1e-8e0f-4a55-9a4e-2f1b9e4c2d10")

func (s *Server) profileFromTailnet(ctx context.Context, remoteAddr string) (*models.Profile, error) {
	who, err := s.tailscale.WhoIs(ctx, remoteAddr)
	if err != nil {
		return nil, fmt.Errorf("whois: %w", err)
	}
	if who.UserProfile == nil || who.UserProfile.LoginName == "" {
		return nil, errors.New("peer has no user profile")
	}
	login := who.UserProfile.LoginName

	profile, err := s.db.GetProfileByEmail(ctx, login)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	p := models.Profile{
		ID:    uuid.NewSHA1(tailnetNamespace, []byte(strings.ToLower(login))),
		Email: login,
		Role:  models.RoleAthlete,
	}
	if name := who.UserProfile.DisplayName; name != "" {
		p.FullName = &name
	}
	s.log.Info("provisioning tailnet profile", "login", login, "id", p.ID)
	return s.db.UpsertProfile(ctx, p)
}
