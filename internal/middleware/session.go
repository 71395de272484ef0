package middleware

import (
	"errors"
	"net/http"

	"app/internal/config"
	"app/internal/session"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

const (
	// echo.Contextに載せるセッションのキー
	CtxSessionKey = "session"

	cookieName = "sid"
)

// Sessionはリクエストごとにセッションを解決するミドルウェア。
// cookieのsidはHS256署名付きJWTで運び、偽造したIDでの
// セッション乗っ取りを防ぐ。読めなければ黙って新規発行する。
// ハンドラ実行後、dirtyなセッションだけ保存する。
func Session(store session.Store, cfg config.Config) echo.MiddlewareFunc {
	secure := cfg.GoEnv == "prod"

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess, isNew := resolve(c, store, cfg.SessionSecret)
			c.Set(CtxSessionKey, sess)

			err := next(c)

			//失敗したハンドラの途中結果も保存する（last write wins）
			if sess.Dirty() {
				if saveErr := store.Save(c.Request().Context(), sess); saveErr != nil {
					log.Errorf("session save failed: %v", saveErr)
				}
			}

			if isNew {
				setCookie(c, sess.ID, cfg.SessionSecret, secure)
			}

			return err
		}
	}
}

// GetSessionはハンドラからセッションを取り出す
func GetSession(c echo.Context) (*session.Session, bool) {
	sess, ok := c.Get(CtxSessionKey).(*session.Session)
	return sess, ok
}

// cookie→検証→ロード。どこかで失敗したら新規セッション。
func resolve(c echo.Context, store session.Store, secret string) (*session.Session, bool) {
	cookie, err := c.Cookie(cookieName)
	if err != nil || cookie.Value == "" {
		return session.New(uuid.NewString()), true
	}

	id, err := parseSessionID(cookie.Value, secret)
	if err != nil {
		return session.New(uuid.NewString()), true
	}

	sess, err := store.Load(c.Request().Context(), id)
	if err != nil {
		//期限切れ等で行が無いのは普通なのでエラーログは出さない
		return session.New(uuid.NewString()), true
	}
	return sess, false
}

// JWTをパースして検証する
func parseSessionID(raw string, secret string) (string, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || token == nil || !token.Valid {
		return "", errors.New("invalid session cookie")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid session cookie")
	}

	id, ok := claims["sid"].(string)
	if !ok || id == "" {
		return "", errors.New("invalid session cookie")
	}
	return id, nil
}

func setCookie(c echo.Context, id string, secret string, secure bool) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sid": id})
	signed, err := tok.SignedString([]byte(secret))
	if err != nil {
		log.Errorf("session cookie sign failed: %v", err)
		return
	}

	c.SetCookie(&http.Cookie{
		Name:     cookieName,
		Value:    signed,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
