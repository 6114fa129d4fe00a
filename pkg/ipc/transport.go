package ipc

import (
	"net"
	"os"
	"path/filepath"
)

// SocketPath derives the filesystem path for a named local socket (§4.7
// "platform-native: namespaced socket where supported, otherwise filesystem
// path"). Go's net package exposes Unix-domain sockets uniformly across the
// platforms this module targets, so the simpler filesystem-path branch is
// used unconditionally rather than reimplementing Linux's abstract-namespace
// sockets by hand.
func SocketPath(name string) string {
	return filepath.Join(os.TempDir(), "gotestr-"+name+".sock")
}

// Listen opens the primary-side listener a worker will dial back into.
func Listen(name string) (net.Listener, error) {
	path := SocketPath(name)
	_ = os.Remove(path)
	return net.Listen("unix", path)
}

// Dial connects a worker process back to its primary's listener.
func Dial(name string) (net.Conn, error) {
	return net.Dial("unix", SocketPath(name))
}
