package askpass

import (
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/opencode-ai/ssh-core/internal/envelope"
)

// socketEnvVar is read by helper mode to find the listener it should dial.
// The ssh process factory sets this in every child's environment.
const socketEnvVar = "OPENCODE_SSH_ASKPASS_SOCKET"

// HelperSocketEnvVar is socketEnvVar's exported name, so main() can detect
// askpass-helper invocations before doing any other startup work.
const HelperSocketEnvVar = socketEnvVar

// IsHelperInvocation reports whether the current process was execed by ssh
// as the SSH_ASKPASS helper rather than started as the ssh-core program.
func IsHelperInvocation() bool {
	_, ok := os.LookupEnv(HelperSocketEnvVar)
	return ok
}

// RunHelper implements SSH_ASKPASS behavior: ssh execs the program binary
// with the prompt text as (typically) a single argument, expecting the
// reply printed to stdout. It dials the session's askpass socket, sends the
// prompt, waits for a reply, and prints it. Returns the process exit code.
func RunHelper(args []string) int {
	socket := os.Getenv(socketEnvVar)
	if socket == "" {
		fmt.Fprintln(os.Stderr, "askpass: "+socketEnvVar+" is not set")
		return 1
	}
	prompt := promptFromArgs(args)

	conn, err := dial(socket)
	if err != nil {
		fmt.Fprintln(os.Stderr, "askpass: dial failed:", err)
		return 1
	}
	defer conn.Close()

	if err := envelope.Write(conn, prompt); err != nil {
		fmt.Fprintln(os.Stderr, "askpass: send prompt failed:", err)
		return 1
	}
	reply, err := envelope.Read(conn)
	if err != nil {
		fmt.Fprintln(os.Stderr, "askpass: read reply failed:", err)
		return 1
	}
	fmt.Println(reply)
	return 0
}

// promptFromArgs reconstructs the prompt text ssh invoked us with. ssh
// normally passes the prompt as argv[1]; some wrappers invoke through an
// intermediate "--ssh-askpass" marker argument, in which case every
// argument after the one following the marker is the prompt.
func promptFromArgs(args []string) string {
	for i, a := range args {
		if a == "--ssh-askpass" && i+1 < len(args) {
			return strings.Join(args[i+2:], " ")
		}
	}
	if len(args) <= 1 {
		return ""
	}
	return strings.Join(args[1:], " ")
}

// dial connects to an askpass socket address: "tcp:HOST:PORT" on platforms
// without Unix domain socket support, a filesystem path otherwise.
func dial(addr string) (net.Conn, error) {
	if strings.HasPrefix(addr, "tcp:") {
		return net.Dial("tcp", strings.TrimPrefix(addr, "tcp:"))
	}
	return net.Dial("unix", addr)
}
