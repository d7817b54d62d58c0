package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"net"
	"os"
	"path"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jroosing/bindzone/internal/zoneerr"
	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

// Defaults applied by NewRemote.
const (
	DefaultSSHPort          = 22
	DefaultSSHUser          = "root"
	DefaultConnectTimeout   = 10 * time.Second
	DefaultOperationTimeout = 30 * time.Second
)

// SSH_FX_NO_SPACE_ON_FILESYSTEM (draft-ietf-secsh-filexfer-13).
const sftpNoSpace = 14

// RemoteConfig addresses and authenticates one SSH host.
type RemoteConfig struct {
	Host     string
	Port     int
	Username string
	// KeyPath is a private key file. It takes precedence over Password.
	KeyPath  string
	Password string
	// KnownHostsPath enables host key verification. When empty any host
	// key is accepted.
	KnownHostsPath   string
	ConnectTimeout   time.Duration
	OperationTimeout time.Duration
}

// CommandResult is the outcome of a remote command.
type CommandResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Remote implements Port over one SSH session. File operations use an SFTP
// sub-channel opened lazily on the live session.
//
// A Remote serves a single operation sequence: Connect, one or more Port
// calls, Release. It is not reused across requests.
type Remote struct {
	cfg    RemoteConfig
	logger *slog.Logger

	mu     sync.Mutex
	conn   net.Conn
	client *ssh.Client
	sftp   *sftp.Client
}

// NewRemote returns an unconnected remote backend.
func NewRemote(cfg RemoteConfig, logger *slog.Logger) *Remote {
	if cfg.Port <= 0 {
		cfg.Port = DefaultSSHPort
	}
	if cfg.Username == "" {
		cfg.Username = DefaultSSHUser
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = DefaultConnectTimeout
	}
	if cfg.OperationTimeout <= 0 {
		cfg.OperationTimeout = DefaultOperationTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Remote{cfg: cfg, logger: logger}
}

// Addr returns host:port.
func (r *Remote) Addr() string {
	return net.JoinHostPort(r.cfg.Host, strconv.Itoa(r.cfg.Port))
}

func (r *Remote) authMethods() ([]ssh.AuthMethod, error) {
	switch {
	case r.cfg.KeyPath != "":
		key, err := os.ReadFile(r.cfg.KeyPath)
		if err != nil {
			return nil, zoneerr.Wrap(zoneerr.ErrAuth, err, "read ssh key %s", r.cfg.KeyPath)
		}
		signer, err := ssh.ParsePrivateKey(key)
		if err != nil {
			return nil, zoneerr.Wrap(zoneerr.ErrAuth, err, "parse ssh key %s", r.cfg.KeyPath)
		}
		return []ssh.AuthMethod{ssh.PublicKeys(signer)}, nil
	case r.cfg.Password != "":
		return []ssh.AuthMethod{ssh.Password(r.cfg.Password)}, nil
	default:
		return nil, zoneerr.Wrap(zoneerr.ErrAuth, nil, "ssh key or password required for %s", r.Addr())
	}
}

func (r *Remote) hostKeyCallback() (ssh.HostKeyCallback, error) {
	if r.cfg.KnownHostsPath == "" {
		r.logger.Warn("ssh host key verification disabled", "addr", r.Addr())
		return ssh.InsecureIgnoreHostKey(), nil //nolint:gosec // opt-in via known_hosts config
	}
	cb, err := knownhosts.New(r.cfg.KnownHostsPath)
	if err != nil {
		return nil, zoneerr.Wrap(zoneerr.ErrConnect, err, "load known_hosts %s", r.cfg.KnownHostsPath)
	}
	return cb, nil
}

// Connect opens an authenticated SSH session. Missing or unreadable
// credentials fail with ErrAuth before any network traffic.
func (r *Remote) Connect(ctx context.Context) error {
	auth, err := r.authMethods()
	if err != nil {
		return err
	}
	hostKey, err := r.hostKeyCallback()
	if err != nil {
		return err
	}

	addr := r.Addr()
	dialer := net.Dialer{Timeout: r.cfg.ConnectTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return zoneerr.Wrap(zoneerr.ErrConnect, err, "dial %s", addr)
	}

	deadline := time.Now().Add(r.cfg.ConnectTimeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(deadline) {
		deadline = dl
	}
	_ = conn.SetDeadline(deadline)
	stop := context.AfterFunc(ctx, func() { _ = conn.SetDeadline(time.Unix(1, 0)) })
	defer stop()

	c, chans, reqs, err := ssh.NewClientConn(conn, addr, &ssh.ClientConfig{
		User:            r.cfg.Username,
		Auth:            auth,
		HostKeyCallback: hostKey,
		Timeout:         r.cfg.ConnectTimeout,
	})
	if err != nil {
		conn.Close()
		if strings.Contains(err.Error(), "unable to authenticate") {
			return zoneerr.Wrap(zoneerr.ErrAuth, err, "ssh login %s@%s", r.cfg.Username, addr)
		}
		return zoneerr.Wrap(zoneerr.ErrConnect, err, "ssh handshake %s", addr)
	}
	_ = conn.SetDeadline(time.Time{})

	r.mu.Lock()
	r.conn = conn
	r.client = ssh.NewClient(c, chans, reqs)
	r.mu.Unlock()

	r.logger.Debug("ssh session opened", "addr", addr, "user", r.cfg.Username)
	return nil
}

// Release closes the SSH session and its SFTP sub-channel. The fields are
// detached under the lock and closed outside it, so a hung peer cannot
// block Release behind an in-flight operation.
func (r *Remote) Release() error {
	r.mu.Lock()
	client, sc := r.client, r.sftp
	r.client, r.sftp, r.conn = nil, nil, nil
	r.mu.Unlock()

	if client == nil {
		return nil
	}
	// Closing the client first ends the SFTP receive loop, so sc.Close
	// does not wait on the peer.
	err := client.Close()
	if sc != nil {
		_ = sc.Close()
	}
	r.logger.Debug("ssh session closed", "addr", r.Addr())
	if err != nil && !errors.Is(err, net.ErrClosed) {
		return zoneerr.Wrap(zoneerr.ErrTransport, err, "close ssh session %s", r.Addr())
	}
	return nil
}

// session returns the live connection pieces.
func (r *Remote) session() (net.Conn, *ssh.Client, *sftp.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.client == nil {
		return nil, nil, nil, zoneerr.Wrap(zoneerr.ErrTransport, nil, "no ssh session to %s", r.Addr())
	}
	return r.conn, r.client, r.sftp, nil
}

// sftpClient returns the session's SFTP client, opening it on first use.
// The subsystem handshake runs under guard without holding r.mu.
func (r *Remote) sftpClient(ctx context.Context, op, p string) (net.Conn, *sftp.Client, error) {
	conn, client, sc, err := r.session()
	if err != nil {
		return nil, nil, err
	}
	if sc != nil {
		return conn, sc, nil
	}

	err = r.guard(ctx, conn, op, p, func() error {
		var err error
		sc, err = sftp.NewClient(client)
		return err
	})
	if err != nil {
		if zoneerr.KindOf(err) == zoneerr.KindInternal {
			err = zoneerr.Wrap(zoneerr.ErrTransport, err, "open sftp on %s", r.Addr())
		}
		return nil, nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	switch {
	case r.client != client:
		// Released while the handshake ran.
		_ = sc.Close()
		return nil, nil, zoneerr.Wrap(zoneerr.ErrTransport, nil, "no ssh session to %s", r.Addr())
	case r.sftp != nil:
		_ = sc.Close()
		return conn, r.sftp, nil
	default:
		r.sftp = sc
		return conn, sc, nil
	}
}

// guard runs fn under the operation timeout and ctx. Expiry or
// cancellation forces the connection deadline into the past, which unblocks
// fn, and is reported as ErrTransport.
func (r *Remote) guard(ctx context.Context, conn net.Conn, op, target string, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return zoneerr.Wrap(zoneerr.ErrTransport, err, "%s %s", op, target)
	}
	ctx, cancel := context.WithTimeout(ctx, r.cfg.OperationTimeout)
	defer cancel()

	stop := context.AfterFunc(ctx, func() { _ = conn.SetDeadline(time.Unix(1, 0)) })
	err := fn()
	if !stop() && ctx.Err() != nil {
		return zoneerr.Wrap(zoneerr.ErrTransport, ctx.Err(), "%s %s", op, target)
	}
	return err
}

func (r *Remote) withSFTP(ctx context.Context, op, p string, fn func(*sftp.Client) error) error {
	conn, sc, err := r.sftpClient(ctx, op, p)
	if err != nil {
		return err
	}
	err = r.guard(ctx, conn, op, p, func() error { return fn(sc) })
	if err != nil && zoneerr.KindOf(err) == zoneerr.KindInternal {
		return remoteError(err, op, p)
	}
	return err
}

func (r *Remote) Read(ctx context.Context, p string) ([]byte, error) {
	var data []byte
	err := r.withSFTP(ctx, "read", p, func(sc *sftp.Client) error {
		f, err := sc.Open(p)
		if err != nil {
			return err
		}
		defer f.Close()
		data, err = io.ReadAll(f)
		return err
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (r *Remote) Write(ctx context.Context, p string, data []byte) error {
	return r.withSFTP(ctx, "write", p, func(sc *sftp.Client) error {
		f, err := sc.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_TRUNC)
		if err != nil {
			return err
		}
		if _, err := f.Write(data); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	})
}

func (r *Remote) List(ctx context.Context, dir string) ([]FileInfo, error) {
	var out []FileInfo
	err := r.withSFTP(ctx, "list", dir, func(sc *sftp.Client) error {
		entries, err := sc.ReadDir(dir)
		if err != nil {
			return err
		}
		out = make([]FileInfo, 0, len(entries))
		for _, e := range entries {
			out = append(out, FileInfo{Name: e.Name(), IsDir: e.IsDir(), Size: e.Size()})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Exists probes path with an SFTP stat.
func (r *Remote) Exists(ctx context.Context, p string) bool {
	err := r.withSFTP(ctx, "stat", p, func(sc *sftp.Client) error {
		_, err := sc.Stat(p)
		return err
	})
	return err == nil
}

// Remove deletes path with the SFTP remove primitive; no shell is involved.
func (r *Remote) Remove(ctx context.Context, p string) error {
	return r.withSFTP(ctx, "remove", p, func(sc *sftp.Client) error {
		return sc.Remove(p)
	})
}

func (r *Remote) ResolvePath(root, name string) (string, error) {
	root = path.Clean(root)
	p := path.Join(root, name)
	if p == root || !within(root, p, "/") {
		return "", accessDenied(root, name)
	}
	return p, nil
}

// ExecuteCommand runs cmd through the remote user's shell. A non-zero exit
// status is returned in the result, not as an error. Any value interpolated
// into cmd must pass CheckShellSafe and be quoted with QuoteArg first.
func (r *Remote) ExecuteCommand(ctx context.Context, cmd string) (CommandResult, error) {
	var res CommandResult
	conn, client, _, err := r.session()
	if err != nil {
		return res, err
	}
	err = r.guard(ctx, conn, "exec", r.Addr(), func() error {
		sess, err := client.NewSession()
		if err != nil {
			return err
		}
		defer sess.Close()

		var stdout, stderr bytes.Buffer
		sess.Stdout = &stdout
		sess.Stderr = &stderr
		runErr := sess.Run(cmd)
		res.Stdout = stdout.String()
		res.Stderr = stderr.String()

		var exitErr *ssh.ExitError
		if errors.As(runErr, &exitErr) {
			res.ExitCode = exitErr.ExitStatus()
			return nil
		}
		return runErr
	})
	if err != nil && zoneerr.KindOf(err) == zoneerr.KindInternal {
		err = zoneerr.Wrap(zoneerr.ErrTransport, err, "exec on %s", r.Addr())
	}
	return res, err
}

// TestConnection connects, runs a trivial command and releases the session.
func (r *Remote) TestConnection(ctx context.Context) error {
	if err := r.Connect(ctx); err != nil {
		return err
	}
	defer r.Release()

	res, err := r.ExecuteCommand(ctx, `echo "SSH connection successful"`)
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return zoneerr.Wrap(zoneerr.ErrTransport, nil, "test command exited with %d: %s",
			res.ExitCode, strings.TrimSpace(res.Stderr))
	}
	return nil
}

func remoteError(err error, op, p string) error {
	var se *sftp.StatusError
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return zoneerr.Wrap(zoneerr.ErrNotFound, err, "%s %s", op, p)
	case errors.Is(err, fs.ErrPermission):
		return zoneerr.Wrap(zoneerr.ErrPermissionDenied, err, "%s %s", op, p)
	case errors.As(err, &se) && se.Code == sftpNoSpace:
		return zoneerr.Wrap(zoneerr.ErrNoSpace, err, "%s %s", op, p)
	default:
		return zoneerr.Wrap(zoneerr.ErrTransport, err, "%s %s", op, p)
	}
}
