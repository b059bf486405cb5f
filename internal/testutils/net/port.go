package net

import (
	"fmt"
	"net"
	"sync"
	"testing"
)

var (
	mu    sync.Mutex
	taken = map[int]struct{}{}
)

/*
FreeAddress returns "localhost:port" address with a port nobody listens on
at the moment. The same port is not returned twice within the test binary so
the tests starting several servers do not get conflicting addresses.
*/
func FreeAddress(t testing.TB) string {
	t.Helper()
	mu.Lock()
	defer mu.Unlock()

	for {
		l, err := net.Listen("tcp", "localhost:0")
		if err != nil {
			t.Fatalf("looking for free port: %v", err)
		}
		port := l.Addr().(*net.TCPAddr).Port
		if err := l.Close(); err != nil {
			t.Fatalf("closing listener: %v", err)
		}
		if _, ok := taken[port]; !ok {
			taken[port] = struct{}{}
			return fmt.Sprintf("localhost:%d", port)
		}
	}
}
