package fetcher

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-rod/rod/lib/launcher"
	"github.com/stretchr/testify/require"

	"postscrape/internal/config"
	"postscrape/internal/observability"
)

// Страница дорисовывает посты асинхронно, как листинг reddit
const listingHTML = `<!doctype html>
<html><body><div id="feed"></div>
<script>
setTimeout(function () {
	document.getElementById('feed').innerHTML =
		'<div class="post"><h3 class="t">A</h3><a class="u">u1</a><div class="v">10</div></div>' +
		'<div class="post"><h3 class="t">B</h3><a class="u">u2</a><div class="v">5</div></div>';
}, 300);
</script>
</body></html>`

const loginHTML = `<!doctype html>
<html><body>
<a id="open" href="#" onclick="document.getElementById('box').style.display='block'; return false;">Log in</a>
<div id="status"></div>
<div id="box" style="display:none">
<iframe id="frame" srcdoc="
	<form onsubmit='parent.document.getElementById(&quot;status&quot;).textContent = &quot;ok:&quot; + document.getElementById(&quot;loginUsername&quot;).value + &quot;:&quot; + document.getElementById(&quot;loginPassword&quot;).value.length; return false;'>
		<input id='loginUsername'>
		<input id='loginPassword' type='password'>
		<button id='submit' type='submit'>Log in</button>
	</form>"></iframe>
</div>
</body></html>`

func requireBrowser(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("browser tests skipped in -short mode")
	}
	if path := os.Getenv(config.EnvChromePath); path != "" {
		return path
	}
	path, ok := launcher.LookPath()
	if !ok {
		t.Skip("no Chromium found")
	}
	return path
}

func testConfig(chromePath string) *config.Config {
	return &config.Config{
		Rod: config.RodConfig{
			ChromePath:     chromePath,
			Headless:       true,
			NoSandbox:      true,
			ViewportWidth:  800,
			ViewportHeight: 600,
			PageTimeoutS:   30,
			WaitTimeoutS:   10,
			DOMStableMS:    100,
		},
		Login: config.LoginConfig{StepTimeoutS: 5},
	}
}

func fixtureServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/listing", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(listingHTML))
	})
	mux.HandleFunc("/login", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(loginHTML))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestRenderWaitsForContent(t *testing.T) {
	cfg := testConfig(requireBrowser(t))
	srv := fixtureServer(t)

	var html string
	err := WithSession(context.Background(), cfg, observability.Nop(), func(s *Session) error {
		var err error
		html, err = s.Render(context.Background(), srv.URL+"/listing", "div.post")
		return err
	})
	require.NoError(t, err)
	require.Contains(t, html, `<h3 class="t">A</h3>`)
	require.Contains(t, html, `<h3 class="t">B</h3>`)
}

func TestRenderMissingContentTimesOut(t *testing.T) {
	cfg := testConfig(requireBrowser(t))
	cfg.Rod.WaitTimeoutS = 1
	srv := fixtureServer(t)

	err := WithSession(context.Background(), cfg, observability.Nop(), func(s *Session) error {
		_, err := s.Render(context.Background(), srv.URL+"/listing", "div.never-there")
		return err
	})
	require.Error(t, err)
	require.True(t, HasCode(err, ErrCodeTimeout))
}

func TestScreenshotMatchesViewport(t *testing.T) {
	cfg := testConfig(requireBrowser(t))
	srv := fixtureServer(t)
	path := filepath.Join(t.TempDir(), "screenshot.png")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0o644))

	err := WithSession(context.Background(), cfg, observability.Nop(), func(s *Session) error {
		return s.Screenshot(context.Background(), srv.URL+"/listing", "div.post", path)
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	img, err := png.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, cfg.Rod.ViewportWidth, img.Width)
	require.Equal(t, cfg.Rod.ViewportHeight, img.Height)
}

func TestLoginSequence(t *testing.T) {
	cfg := testConfig(requireBrowser(t))
	srv := fixtureServer(t)

	login := config.LoginConfig{
		URL:          srv.URL + "/login",
		StepTimeoutS: 5,
		SuccessXPath: `//*[@id="status" and text()="ok:alice:6"]`,
		Steps: []config.LoginStep{
			{Action: "click", XPath: `//*[@id="open"]`},
			{Action: "frame", XPath: `//*[@id="frame"]`},
			{Action: "input", XPath: `//*[@id="loginUsername"]`, Value: "username"},
			{Action: "input", XPath: `//*[@id="loginPassword"]`, Value: "password"},
			{Action: "submit", XPath: `//*[@id="submit"]`},
		},
	}
	creds := config.Credentials{Username: "alice", Password: "secret"}

	err := WithSession(context.Background(), cfg, observability.Nop(), func(s *Session) error {
		return s.Login(context.Background(), login, creds)
	})
	require.NoError(t, err)
}

func TestLoginMissingElement(t *testing.T) {
	cfg := testConfig(requireBrowser(t))
	cfg.Login.StepTimeoutS = 1
	srv := fixtureServer(t)

	login := config.LoginConfig{
		URL:          srv.URL + "/login",
		StepTimeoutS: 1,
		Steps: []config.LoginStep{
			{Action: "click", XPath: `//*[@id="open"]`},
			{Action: "click", XPath: `//*[@id="layout-changed"]`},
		},
	}

	err := WithSession(context.Background(), cfg, observability.Nop(), func(s *Session) error {
		return s.Login(context.Background(), login, config.Credentials{})
	})
	require.Error(t, err)
	require.True(t, HasCode(err, ErrCodeElementNotFound))
	require.ErrorContains(t, err, "login step 1 (click)")
}

func TestWithSessionClosesOnError(t *testing.T) {
	cfg := testConfig(requireBrowser(t))
	boom := errors.New("extraction failed")

	var session *Session
	err := WithSession(context.Background(), cfg, observability.Nop(), func(s *Session) error {
		session = s
		return boom
	})
	require.ErrorIs(t, err, boom)

	// Браузер уже закрыт: новая вкладка не откроется
	_, pageErr := session.browser.Pages()
	require.Error(t, pageErr)
	require.NoError(t, session.Close())
}
