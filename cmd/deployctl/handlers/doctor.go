package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/imamik/deployctl/internal/agent"
	"github.com/imamik/deployctl/internal/config"
)

// ToolStatus reports one local executable.
type ToolStatus struct {
	Name     string `json:"name"`
	Required bool   `json:"required"`
	Found    bool   `json:"found"`
	Path     string `json:"path,omitempty"`
	Version  string `json:"version,omitempty"`
}

// Check is a single diagnostic outcome.
type Check struct {
	Name    string `json:"name"`
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

// DoctorReport is the output of the doctor command.
type DoctorReport struct {
	Tools  []ToolStatus `json:"tools"`
	Checks []Check      `json:"checks"`
}

// Doctor checks local tools, the configuration, cloud credentials and the
// backup bucket, and fails when anything required is missing.
func Doctor(ctx context.Context, g Globals) error {
	report := DoctorReport{}

	tools := checkTools()
	for _, r := range tools.Results {
		report.Tools = append(report.Tools, ToolStatus{
			Name:     r.Tool.Name,
			Required: r.Tool.Required,
			Found:    r.Found,
			Path:     r.Path,
			Version:  r.Version,
		})
	}
	failed := tools.Error()

	s, err := newSession(g)
	if err != nil {
		report.Checks = append(report.Checks, Check{Name: "configuration", Message: err.Error()})
		failed = errors.Join(failed, err)
	} else {
		report.Checks = append(report.Checks, Check{Name: "configuration", OK: true, Message: s.cfg.Infrastructure})
		for _, c := range []Check{checkCredentials(ctx, s), checkBackup(ctx, s)} {
			if !c.OK && c.Message != "" {
				failed = errors.Join(failed, fmt.Errorf("%s: %s", c.Name, c.Message))
			}
			report.Checks = append(report.Checks, c)
		}
	}

	if g.JSON {
		if err := printJSON(report); err != nil {
			return err
		}
	} else {
		printDoctor(report)
	}
	return failed
}

func checkCredentials(ctx context.Context, s *session) Check {
	c := Check{Name: "cloud credentials"}
	if s.cfg.Infrastructure == config.InfrastructureXen {
		c.OK = true
		c.Message = "not needed for xen"
		return c
	}
	a, err := s.agentFor(s.cfg.Infrastructure)
	if err == nil {
		err = a.AssertCredentials(ctx, agent.ParamsFromConfig(s.cfg, ""))
	}
	if err != nil {
		c.Message = err.Error()
		return c
	}
	c.OK = true
	return c
}

// checkBackup reports an unconfigured backup as not OK without failing the
// doctor run; backups are optional.
func checkBackup(ctx context.Context, s *session) Check {
	c := Check{Name: "backup bucket"}
	if !s.cfg.Backup.Enabled() {
		return c
	}
	objects, err := newObjectStore(ctx, s.cfg.Backup)
	if err != nil {
		c.Message = err.Error()
		return c
	}
	exists, err := objects.BucketExists(ctx, s.cfg.Backup.Bucket)
	switch {
	case err != nil:
		c.Message = err.Error()
	case !exists:
		c.OK = true
		c.Message = s.cfg.Backup.Bucket + " will be created on first backup"
	default:
		c.OK = true
		c.Message = s.cfg.Backup.Bucket
	}
	return c
}

func printDoctor(report DoctorReport) {
	printHeader("deployctl doctor")
	printSection("Tools")
	for _, t := range report.Tools {
		extra := t.Version
		if !t.Found && !t.Required {
			extra = "optional"
		}
		printCheck(t.Name, t.Found, extra)
	}
	printSection("Checks")
	for _, c := range report.Checks {
		msg := c.Message
		if !c.OK && msg == "" {
			msg = "not configured"
		}
		printCheck(c.Name, c.OK, msg)
	}
	fmt.Fprintln(stdout)
}
