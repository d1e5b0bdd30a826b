package main

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var jwtSigningMethod = jwt.GetSigningMethod("RS256")

type PlayerClaims struct {
	PlayerId int64  `json:"player_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

func createPlayerToken(playerId int64, username string) (string, error) {
	now := time.Now()
	claims := PlayerClaims{
		playerId,
		username,
		jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(config.Jwt.TokenLifetime.Duration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwtSigningMethod, claims)
	return token.SignedString(jwtPrivateKey)
}

func parsePlayerToken(token string) (*PlayerClaims, error) {
	var claims PlayerClaims
	_, err := jwt.ParseWithClaims(
		token, &claims,
		func(t *jwt.Token) (any, error) { return jwtPublicKey, nil },
		jwt.WithValidMethods([]string{jwtSigningMethod.Alg()}),
	)
	if err != nil {
		return nil, err
	}
	return &claims, nil
}

func setPlayerCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     "auth",
		Path:     "/",
		Value:    token,
		Secure:   config.Production(),
		HttpOnly: true,
		Expires:  time.Now().Add(config.Jwt.TokenLifetime.Duration),
		SameSite: http.SameSiteNoneMode,
	})
}

func clearPlayerCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     "auth",
		Path:     "/",
		MaxAge:   -1,
		Secure:   config.Production(),
		HttpOnly: true,
		SameSite: http.SameSiteNoneMode,
	})
}

// refreshPlayerCookie reissues the token so active players never see
// their session expire mid-game.
func refreshPlayerCookie(w http.ResponseWriter, claims PlayerClaims) {
	token, err := createPlayerToken(claims.PlayerId, claims.Username)
	if err != nil {
		log.Error("unable to refresh player token: ", err)
		return
	}
	setPlayerCookie(w, token)
}
