package authz

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Yi-Jacob/mentalspace-ehr-sub008/pkg/authz"
	"github.com/Yi-Jacob/mentalspace-ehr-sub008/pkg/logger"
)

type contextKey string

// actorContextKey carries the authenticated actor through the request context
const actorContextKey contextKey = "authz_actor"

// StaffClaims are the JWT claims issued to practice staff
type StaffClaims struct {
	UserID string   `json:"user_id"`
	Roles  []string `json:"roles"`
	jwt.RegisteredClaims
}

// TokenValidator validates staff bearer tokens
type TokenValidator struct {
	jwtSecret []byte
	issuer    string
	audience  string
}

// NewTokenValidator creates a new token validator. An empty issuer or
// audience disables that registered-claim check.
func NewTokenValidator(secret, issuer, audience string) *TokenValidator {
	return &TokenValidator{
		jwtSecret: []byte(secret),
		issuer:    issuer,
		audience:  audience,
	}
}

// ValidateToken parses and validates a staff JWT, returning the actor it
// identifies. Claimed roles outside the vocabulary are dropped rather than
// rejected, so a stale token cannot smuggle in grants.
func (tv *TokenValidator) ValidateToken(tokenString string) (*authz.Actor, error) {
	var opts []jwt.ParserOption
	if tv.issuer != "" {
		opts = append(opts, jwt.WithIssuer(tv.issuer))
	}
	if tv.audience != "" {
		opts = append(opts, jwt.WithAudience(tv.audience))
	}

	token, err := jwt.ParseWithClaims(tokenString, &StaffClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return tv.jwtSecret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(*StaffClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}

	if claims.UserID == "" {
		return nil, fmt.Errorf("token missing user_id claim")
	}

	actor := &authz.Actor{UserID: claims.UserID}
	for _, raw := range claims.Roles {
		role, parseErr := authz.ParseRole(raw)
		if parseErr != nil {
			continue
		}
		actor.Roles = append(actor.Roles, role)
	}

	return actor, nil
}

// ActorMiddleware extracts the authenticated actor from the Authorization
// header and attaches it to the request context
func ActorMiddleware(validator *TokenValidator, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				http.Error(w, `{"error":"missing bearer token"}`, http.StatusUnauthorized)
				return
			}

			actor, err := validator.ValidateToken(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				log.WithError(err).Warn("Rejected request with invalid token")
				http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), actorContextKey, actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ActorFromContext returns the actor attached by ActorMiddleware
func ActorFromContext(ctx context.Context) (*authz.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey).(*authz.Actor)
	return actor, ok
}

// ContextWithActor attaches an actor to a context; used by tests and by
// in-process callers that bypass HTTP
func ContextWithActor(ctx context.Context, actor *authz.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey, actor)
}
