package remote

import (
	"io"
	"log"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/beevik/spc700/host"
	"github.com/gorilla/websocket"
)

func newTestServer(t *testing.T) string {
	t.Helper()
	logger := log.New(io.Discard, "", 0)
	srv := httptest.NewServer(NewServer(logger, host.WithRunLimit(1000)))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http") + Path
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func exchange(t *testing.T, conn *websocket.Conn, lines string) string {
	t.Helper()
	if err := conn.WriteMessage(websocket.TextMessage, []byte(lines)); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	tp, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if tp != websocket.TextMessage {
		t.Fatalf("unexpected message type %d", tp)
	}
	return string(msg)
}

func expectContains(t *testing.T, out, want string) {
	t.Helper()
	if !strings.Contains(out, want) {
		t.Errorf("response missing %q:\n%s", want, out)
	}
}

func TestSession(t *testing.T) {
	url := newTestServer(t)
	conn := dial(t, url)

	out := exchange(t, conn, "memory set $200 $E8 $05")
	expectContains(t, out, "0200- E8 05")

	out = exchange(t, conn, "evaluate [$201]+1")
	expectContains(t, out, "$0006 (6)")

	out = exchange(t, conn, "register pc $200\nstep in\nregister")
	expectContains(t, out, "Register PC set to $0200.")
	expectContains(t, out, "A=05")
}

func TestRunIsBounded(t *testing.T) {
	url := newTestServer(t)
	conn := dial(t, url)

	out := exchange(t, conn, "memory set $200 $2F $FE\nrun $200")
	expectContains(t, out, "Stopped after 1000 instructions.")
}

func TestSessionsAreIndependent(t *testing.T) {
	url := newTestServer(t)
	c1 := dial(t, url)
	c2 := dial(t, url)

	exchange(t, c1, "memory set $10 $AA")
	out := exchange(t, c2, "evaluate [$10]")
	expectContains(t, out, "$0000 (0)")
	out = exchange(t, c1, "evaluate [$10]")
	expectContains(t, out, "$00AA (170)")
}

func TestNoFileAccess(t *testing.T) {
	url := newTestServer(t)
	conn := dial(t, url)

	out := exchange(t, conn, "load /etc/passwd\nexecute cmds\nscript s\nmemviz out")
	for _, name := range []string{"load", "execute", "script", "memviz"} {
		expectContains(t, out, "Command '"+name+"' is not available in this session.")
	}

	out = exchange(t, conn, "lua print(type(os), type(io), type(dofile), type(require))")
	expectContains(t, out, "nil\tnil\tnil\tnil")

	out = exchange(t, conn, "lua print(string.upper('ok'), math.max(1, 2))")
	expectContains(t, out, "OK\t2")
}

func TestQuit(t *testing.T) {
	url := newTestServer(t)
	conn := dial(t, url)

	out := exchange(t, conn, "evaluate 1+1\nquit\nevaluate 3")
	expectContains(t, out, "$0002 (2)")
	if strings.Contains(out, "$0003") {
		t.Errorf("command after quit was executed:\n%s", out)
	}

	_, _, err := conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		t.Errorf("expected normal closure, got %v", err)
	}
}
