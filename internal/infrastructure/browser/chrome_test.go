package browser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testPage = `<html><body><script>
fetch('/api/equity-stockIndices?index=NIFTY%2050').then(r => r.json()).then(d => { document.title = d.name; });
</script></body></html>`

func TestChrome_InterceptAndEvaluate(t *testing.T) {
	if os.Getenv("CHROME_TESTS") != "1" {
		t.Skip("set CHROME_TESTS=1 to run against a local Chrome")
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(testPage))
	})
	mux.HandleFunc("/api/equity-stockIndices", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"NIFTY 50","data":[]}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	sess, err := NewChrome(ChromeOptions{ExecPath: os.Getenv("CHROME_PATH")}).NewSession(ctx)
	require.NoError(t, err)
	defer sess.Close()

	bodies := sess.Intercept("/api/equity-stockIndices")
	require.NoError(t, sess.Navigate(srv.URL))

	select {
	case b := <-bodies:
		require.JSONEq(t, `{"name":"NIFTY 50","data":[]}`, string(b))
	case <-time.After(10 * time.Second):
		t.Fatal("no intercepted response")
	}

	var got int
	require.NoError(t, sess.Evaluate(`Promise.resolve(40 + 2)`, &got))
	require.Equal(t, 42, got)
}
