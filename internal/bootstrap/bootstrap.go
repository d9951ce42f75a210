// Package bootstrap queries the remote agent's installed version and
// installs or upgrades it when missing or out of date (component F).
package bootstrap

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/opencode-ai/ssh-core/internal/appconfig"
	"github.com/opencode-ai/ssh-core/internal/model"
	"github.com/opencode-ai/ssh-core/internal/security"
	"github.com/opencode-ai/ssh-core/internal/sshproc"
)

// installerTemplate is the remote install pipeline, run through "bash -lc":
// it fetches the script at InstallerURL and pipes it into "bash -s --".
const installerTemplate = "curl -fsSL " + appconfig.InstallerURL + " | bash -s -- --version %s --no-modify-path"

// Ensure queries the remote agent's version and installs or upgrades it to
// appconfig.Version if it is missing or mismatched.
func Ensure(ctx context.Context, factory *sshproc.Factory, spec model.Spec, socketPath string) error {
	installed, err := probeVersion(ctx, factory, spec, socketPath)
	if err == nil && strings.TrimSpace(installed) == appconfig.Version {
		return nil
	}
	return install(ctx, factory, spec, socketPath)
}

func probeVersion(ctx context.Context, factory *sshproc.Factory, spec model.Spec, socketPath string) (string, error) {
	cmd, err := factory.Command(ctx, spec, sshproc.RoleClient, socketPath, nil, "cd; ~/.opencode/bin/opencode --version")
	if err != nil {
		return "", err
	}
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return "", err
	}
	return strings.TrimSpace(out.String()), nil
}

func install(ctx context.Context, factory *sshproc.Factory, spec model.Spec, socketPath string) error {
	installer := fmt.Sprintf(installerTemplate, appconfig.Version)
	remote := fmt.Sprintf("cd; bash -lc %s", shellQuote(installer))

	cmd, err := factory.Command(ctx, spec, sshproc.RoleClient, socketPath, nil, remote)
	if err != nil {
		return security.NewError(security.RemoteBootstrapFailure, "could not start the remote installer", err.Error())
	}
	var stderr bytes.Buffer
	cmd.Stdout = &stderr
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return security.NewError(security.RemoteBootstrapFailure,
			"installing the remote agent failed",
			fmt.Sprintf("%v: %s", err, strings.TrimSpace(stderr.String())))
	}
	return nil
}

// shellQuote wraps s in single quotes, escaping any embedded single quotes
// as '\'' so the resulting string is safe to pass verbatim to "bash -lc".
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
