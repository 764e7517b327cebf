package deployer

import (
	"context"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"photofolio/common"
)

// VercelStore uploads through the Vercel CLI ("vercel blob put"). A locally
// installed vercel is preferred; otherwise it is fetched with npx.
type VercelStore struct {
	token  string
	stdout io.Writer
	stderr io.Writer

	command  string
	baseArgs []string
}

func NewVercelStore(token string, stdout, stderr io.Writer) *VercelStore {
	return &VercelStore{token: token, stdout: stdout, stderr: stderr}
}

func (s *VercelStore) Name() string { return "Vercel Blob" }

// Prepare picks the executable once so every upload uses the same one.
func (s *VercelStore) Prepare(ctx context.Context) error {
	if _, err := common.RunCommand(ctx, "vercel", "--version"); err == nil {
		s.command = "vercel"
		s.baseArgs = nil
	} else {
		log.Printf("vercel CLI not found locally, falling back to npx")
		s.command = "npx"
		s.baseArgs = []string{"-y", "vercel@latest"}
	}
	return nil
}

func (s *VercelStore) display() string {
	return strings.Join(append([]string{s.command}, s.baseArgs...), " ")
}

func (s *VercelStore) Put(ctx context.Context, target UploadTarget) error {
	if s.command == "" {
		return fmt.Errorf("vercel store used before Prepare")
	}

	args := append([]string{}, s.baseArgs...)
	args = append(args,
		"blob", "put", target.LocalPath,
		"--pathname", target.RemotePath,
		"--cache-control-max-age", strconv.FormatInt(target.CacheMaxAge, 10),
		"--force",
	)
	if s.token != "" {
		args = append(args, "--rw-token", s.token)
	}

	return common.StreamCommand(ctx, s.stdout, s.stderr, s.command, args...)
}

func (s *VercelStore) ListHint(prefix string) string {
	return fmt.Sprintf("%s blob list --prefix %q --limit 1000", s.display(), prefix+"/")
}
