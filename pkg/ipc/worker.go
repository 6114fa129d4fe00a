package ipc

import (
	"errors"
	"io"
	"net"
)

// Executor runs exactly one resolved test and produces its wire result.
// The worker process bootstraps the same registry/plan the primary would
// build for itself (§4.7 "a worker bootstraps identically to the primary")
// and satisfies this interface; ipc stays decoupled from the scheduler and
// registry packages so it can be grounded/tested in isolation.
type Executor interface {
	Execute(cmd Command) SerializableResult
}

// RunWorker dials back to the primary's named socket and loops: read one
// Command, execute it, write one Response, repeat until the primary closes
// the connection (§4.7 "Worker lifecycle"). It returns nil on a clean
// shutdown (EOF) and a non-nil error for anything else, which the caller
// should treat as a fatal worker exit.
func RunWorker(socketName string, exec Executor) error {
	conn, err := Dial(socketName)
	if err != nil {
		return err
	}
	defer conn.Close()

	return serve(conn, exec)
}

func serve(conn net.Conn, exec Executor) error {
	for {
		cmd, err := ReadCommand(conn)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		result := exec.Execute(cmd)
		if err := WriteResponse(conn, Response{Result: result}); err != nil {
			return err
		}
	}
}
