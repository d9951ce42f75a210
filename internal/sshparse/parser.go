// Package sshparse tokenizes and validates a user-supplied ssh command line
// into a model.Spec: a single destination plus an allowlisted set of
// passthrough flags. Nothing outside the allowlist reaches the SSH process
// factory — no remote command, no port-forwarding flags, no unrecognized
// options.
package sshparse

import (
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/opencode-ai/ssh-core/internal/model"
	"github.com/opencode-ai/ssh-core/internal/security"
)

// noValueFlags take no argument.
var noValueFlags = map[string]bool{
	"-4": true, "-6": true, "-A": true, "-a": true, "-C": true,
	"-K": true, "-k": true, "-X": true, "-x": true, "-Y": true, "-y": true,
}

// oneValueFlags take exactly one argument, attached ("-oFoo=Bar") or
// separated ("-o Foo=Bar").
var oneValueFlags = map[string]bool{
	"-B": true, "-b": true, "-c": true, "-D": true, "-F": true,
	"-I": true, "-i": true, "-J": true, "-l": true, "-m": true,
	"-o": true, "-P": true, "-p": true, "-w": true,
}

// Parse tokenizes command with POSIX shell-word rules and validates it into
// a Spec. Returns a *security.ClassifiedError with Kind BadCommand on any
// rejection; never panics on malformed input.
func Parse(command string) (model.Spec, error) {
	trimmed := strings.TrimSpace(command)
	if trimmed == "" {
		return model.Spec{}, badCommand("command is empty", "empty input")
	}
	trimmed = strings.TrimPrefix(trimmed, "ssh ")

	tokens, err := shellquote.Split(trimmed)
	if err != nil {
		return model.Spec{}, badCommand("could not parse command", err.Error())
	}
	if len(tokens) == 0 {
		return model.Spec{}, badCommand("command is empty", "no tokens after tokenizing")
	}

	var spec model.Spec
	i := 0
	for i < len(tokens) {
		tok := tokens[i]

		if spec.Destination != "" {
			return model.Spec{}, badCommand("remote commands are not supported", "trailing token after destination: "+tok)
		}

		if strings.HasPrefix(tok, "-") && tok != "-" {
			flag, attached := splitFlag(tok)

			if flag == "-L" || flag == "-R" {
				return model.Spec{}, badCommand("port forwarding flags (-L/-R) are not supported", tok)
			}

			if noValueFlags[flag] {
				if attached != "" {
					return model.Spec{}, badCommand("unsupported ssh argument", tok)
				}
				spec.Args = append(spec.Args, tok)
				i++
				continue
			}

			if oneValueFlags[flag] {
				if attached != "" {
					spec.Args = append(spec.Args, tok)
					i++
					continue
				}
				if i+1 >= len(tokens) {
					return model.Spec{}, badCommand("flag "+flag+" requires a value", tok)
				}
				spec.Args = append(spec.Args, flag, tokens[i+1])
				i += 2
				continue
			}

			return model.Spec{}, badCommand("unsupported ssh argument", tok)
		}

		spec.Destination = tok
		i++
	}

	if spec.Destination == "" {
		return model.Spec{}, badCommand("no destination specified", "no non-flag token found")
	}
	return spec, nil
}

// splitFlag splits a token like "-oFoo=Bar" into ("-o", "Foo=Bar"), or a bare
// flag like "-p" into ("-p", "").
func splitFlag(tok string) (flag, attached string) {
	if len(tok) < 2 {
		return tok, ""
	}
	return tok[:2], tok[2:]
}

func badCommand(userSafe, debugDetail string) error {
	return security.NewError(security.BadCommand, userSafe, debugDetail)
}
