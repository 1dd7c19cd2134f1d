package google

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// OpenFunc presents the consent URL to the user, e.g. by printing it or
// launching a browser.
type OpenFunc func(authURL string) error

// LoopbackLogin runs the installed-app flow: it listens on a random
// 127.0.0.1 port, sends the user to the consent page and exchanges the
// code delivered to the loopback redirect.
func LoopbackLogin(ctx context.Context, a *Authenticator, account string, open OpenFunc) error {
	if err := validateAccountName(account); err != nil {
		return err
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("failed to listen for the OAuth redirect: %w", err)
	}
	redirectURL := fmt.Sprintf("http://%s/callback", ln.Addr().String())
	state := uuid.NewString()

	type callback struct {
		code string
		err  error
	}
	results := make(chan callback, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		var cb callback
		switch {
		case q.Get("state") != state:
			cb.err = errors.New("OAuth state mismatch")
		case q.Get("error") != "":
			cb.err = fmt.Errorf("authorization denied: %s", q.Get("error"))
		case q.Get("code") == "":
			cb.err = errors.New("authorization code missing")
		default:
			cb.code = q.Get("code")
		}
		if cb.err != nil {
			http.Error(w, cb.err.Error(), http.StatusBadRequest)
		} else {
			_, _ = fmt.Fprintln(w, "calimport is authorized. You can close this page now.")
		}
		select {
		case results <- cb:
		default:
		}
	})

	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() { _ = srv.Serve(ln) }()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := open(a.AuthCodeURL(state, redirectURL)); err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case cb := <-results:
		if cb.err != nil {
			return cb.err
		}
		return a.Exchange(ctx, account, cb.code, redirectURL)
	}
}
