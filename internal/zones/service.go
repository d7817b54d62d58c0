// Package zones implements the zone operations offered to clients: list,
// read, create and delete zone files, and append or delete single records,
// on a local or remote BIND host.
//
// Every operation opens a storage Port for its target, performs one
// read-modify-write cycle through the zone codec and releases the Port
// before returning, on success and failure alike. Nothing is cached between
// operations.
package zones

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/jroosing/bindzone/internal/hosts"
	"github.com/jroosing/bindzone/internal/storage"
	"github.com/jroosing/bindzone/internal/zone"
	"github.com/jroosing/bindzone/internal/zoneerr"
)

// DefaultReverseNameServer is written into new reverse zones when neither
// the request nor the service configuration names one.
const DefaultReverseNameServer = "ns1.example.com."

// Summary is one zone file in a listing.
type Summary struct {
	Name  string
	Class zone.Class
	Size  int64
}

// Detail is a parsed zone file.
type Detail struct {
	Name       string
	Class      zone.Class
	Records    []zone.Record
	RawContent string
}

// CreateRequest describes a new zone.
type CreateRequest struct {
	Name       string
	SOAEmail   string
	Serial     int64 // 0 means the current unix time
	NameServer string
	Address    string // forward zones only
}

// RecordInput is a record to append. TTL is accepted for compatibility and
// ignored: appended lines carry no TTL column.
type RecordInput struct {
	Name  string
	Kind  string
	Value string
	TTL   uint32
}

// ConnectionResult reports what TestConnection could reach.
type ConnectionResult struct {
	Local           bool
	ZonesPathExists bool
}

// Config configures a Service. Zero fields take defaults.
type Config struct {
	Open              Opener
	Logger            *slog.Logger
	Now               func() time.Time
	Stats             *Stats
	DefaultNameServer string // reverse zones
	DefaultAddress    string // forward zones
}

// Service runs zone operations against hosts.
type Service struct {
	open        Opener
	logger      *slog.Logger
	now         func() time.Time
	stats       *Stats
	defaultNS   string
	defaultAddr string
	locks       pathLocks
}

type commander interface {
	ExecuteCommand(ctx context.Context, cmd string) (storage.CommandResult, error)
}

// New creates a Service.
func New(cfg Config) *Service {
	s := &Service{
		open:        cfg.Open,
		logger:      cfg.Logger,
		now:         cfg.Now,
		stats:       cfg.Stats,
		defaultNS:   cfg.DefaultNameServer,
		defaultAddr: cfg.DefaultAddress,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.open == nil {
		s.open = NewOpener(SSHSettings{}, s.logger)
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.stats == nil {
		s.stats = NewStats()
	}
	if s.defaultNS == "" {
		s.defaultNS = DefaultReverseNameServer
	}
	if s.defaultAddr == "" {
		s.defaultAddr = zone.DefaultAddress
	}
	return s
}

// Stats returns the service's operation counters.
func (s *Service) Stats() *Stats {
	return s.stats
}

// ============================================================================
// Plumbing
// ============================================================================

// withPort opens a Port for t, runs fn and releases the Port on every path.
func (s *Service) withPort(ctx context.Context, t hosts.Target, mutation bool, fn func(storage.Port) error) error {
	start := s.now()
	err := s.runWithPort(ctx, t, fn)
	s.stats.Record(mutation, s.now().Sub(start), err)
	return err
}

func (s *Service) runWithPort(ctx context.Context, t hosts.Target, fn func(storage.Port) error) error {
	port, err := s.open(ctx, t)
	if err != nil {
		return err
	}
	defer func() {
		if rerr := port.Release(); rerr != nil {
			s.logger.Warn("release storage failed", "server", t.ID, "err", rerr)
		}
	}()
	return fn(port)
}

func lockKey(t hosts.Target, path string) string {
	return t.ID + "\x00" + t.Host + "\x00" + path
}

// reload runs the target's reload command after a mutation of zoneName.
// Local targets and targets without a command are skipped.
func (s *Service) reload(ctx context.Context, t hosts.Target, port storage.Port, zoneName string) error {
	if t.ReloadCommand == "" || t.IsLocal() {
		return nil
	}
	c, ok := port.(commander)
	if !ok {
		return nil
	}
	cmd, err := storage.RenderCommand(t.ReloadCommand, map[string]string{"zone": zoneName})
	if err != nil {
		return err
	}
	res, err := c.ExecuteCommand(ctx, cmd)
	if err != nil {
		return zoneerr.Wrap(zoneerr.ErrTransport, err, "zone saved, reload failed")
	}
	if res.ExitCode != 0 {
		return zoneerr.Wrap(zoneerr.ErrTransport, nil, "zone saved, reload failed (exit %d): %s",
			res.ExitCode, strings.TrimSpace(res.Stderr))
	}
	s.logger.Debug("zone reloaded", "server", t.ID, "zone", zoneName)
	return nil
}

func isZoneFile(e storage.FileInfo) bool {
	return !e.IsDir && !strings.HasPrefix(e.Name, ".") && !strings.HasSuffix(e.Name, ".jnl")
}

// ============================================================================
// Operations
// ============================================================================

// ListZones returns the zone files of class in the target's zones
// directory, sorted by name. Hidden files, journals and directories are
// skipped.
func (s *Service) ListZones(ctx context.Context, t hosts.Target, class zone.Class) ([]Summary, error) {
	out := []Summary{}
	err := s.withPort(ctx, t, false, func(port storage.Port) error {
		entries, err := port.List(ctx, t.ZonesPath)
		if err != nil {
			return err
		}
		for _, e := range entries {
			if isZoneFile(e) && zone.ClassOf(e.Name) == class {
				out = append(out, Summary{Name: e.Name, Class: class, Size: e.Size})
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.SortFunc(out, func(a, b Summary) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

// GetZone reads and parses one zone.
func (s *Service) GetZone(ctx context.Context, t hosts.Target, class zone.Class, name string) (Detail, error) {
	if err := validateZoneName(name, class); err != nil {
		return Detail{}, err
	}
	var d Detail
	err := s.withPort(ctx, t, false, func(port storage.Port) error {
		path, err := port.ResolvePath(t.ZonesPath, name)
		if err != nil {
			return err
		}
		data, err := port.Read(ctx, path)
		if err != nil {
			return err
		}
		text := string(data)
		d = Detail{Name: name, Class: class, Records: zone.Parse(text, class), RawContent: text}
		return nil
	})
	return d, err
}

// CreateZone writes a new zone from the class template. It fails with
// ErrAlreadyExists when the file is present.
func (s *Service) CreateZone(ctx context.Context, t hosts.Target, class zone.Class, req CreateRequest) (Detail, error) {
	if err := validateZoneName(req.Name, class); err != nil {
		return Detail{}, err
	}
	if err := validateCreate(class, req); err != nil {
		return Detail{}, err
	}

	params := zone.TemplateParams{
		Zone:       req.Name,
		SOAEmail:   req.SOAEmail,
		Serial:     req.Serial,
		NameServer: req.NameServer,
		Address:    req.Address,
	}
	if params.Serial == 0 {
		params.Serial = s.now().Unix()
	}
	var text string
	if class == zone.Reverse {
		if params.NameServer == "" {
			params.NameServer = s.defaultNS
		}
		text = zone.ReverseTemplate(params)
	} else {
		if params.Address == "" {
			params.Address = s.defaultAddr
		}
		text = zone.ForwardTemplate(params)
	}

	err := s.withPort(ctx, t, true, func(port storage.Port) error {
		path, err := port.ResolvePath(t.ZonesPath, req.Name)
		if err != nil {
			return err
		}
		unlock := s.locks.lock(lockKey(t, path))
		defer unlock()

		if port.Exists(ctx, path) {
			return zoneerr.Wrap(zoneerr.ErrAlreadyExists, nil, "zone %s", req.Name)
		}
		if err := port.Write(ctx, path, []byte(text)); err != nil {
			return err
		}
		s.logger.Info("zone created", "server", t.ID, "zone", req.Name, "class", class.String())
		return s.reload(ctx, t, port, req.Name)
	})
	if err != nil {
		return Detail{}, err
	}
	return Detail{Name: req.Name, Class: class, Records: zone.Parse(text, class), RawContent: text}, nil
}

// AddRecord appends one record line to a zone, leaving every existing line
// untouched, and returns the record as the new file parses it.
func (s *Service) AddRecord(ctx context.Context, t hosts.Target, class zone.Class, zoneName string, in RecordInput) (zone.Record, error) {
	if err := validateZoneName(zoneName, class); err != nil {
		return zone.Record{}, err
	}
	rec, err := validateRecordInput(class, zoneName, in)
	if err != nil {
		return zone.Record{}, err
	}

	var added zone.Record
	err = s.withPort(ctx, t, true, func(port storage.Port) error {
		path, err := port.ResolvePath(t.ZonesPath, zoneName)
		if err != nil {
			return err
		}
		unlock := s.locks.lock(lockKey(t, path))
		defer unlock()

		data, err := port.Read(ctx, path)
		if err != nil {
			return err
		}
		text := zone.Append(string(data), rec)
		records := zone.Parse(text, class)
		if len(records) == 0 || records[len(records)-1].Name != rec.Name || records[len(records)-1].Kind != rec.Kind {
			return zoneerr.Wrap(zoneerr.ErrInvalidFormat, nil, "record %s %s would not read back as a record", rec.Name, rec.Kind)
		}
		added = records[len(records)-1]

		if err := port.Write(ctx, path, []byte(text)); err != nil {
			return err
		}
		s.logger.Info("record added", "server", t.ID, "zone", zoneName, "name", added.Name, "type", string(added.Kind))
		return s.reload(ctx, t, port, zoneName)
	})
	if err != nil {
		return zone.Record{}, err
	}
	return added, nil
}

// DeleteRecord removes the record with the given id ("record-N" or "N") and
// rewrites the zone body. An unknown id yields ErrNotFound and leaves the
// file untouched.
func (s *Service) DeleteRecord(ctx context.Context, t hosts.Target, class zone.Class, zoneName, id string) error {
	if err := validateZoneName(zoneName, class); err != nil {
		return err
	}

	return s.withPort(ctx, t, true, func(port storage.Port) error {
		path, err := port.ResolvePath(t.ZonesPath, zoneName)
		if err != nil {
			return err
		}
		unlock := s.locks.lock(lockKey(t, path))
		defer unlock()

		data, err := port.Read(ctx, path)
		if err != nil {
			return err
		}
		text := string(data)
		records := zone.Parse(text, class)

		idx, ok := zone.ParseRecordID(id)
		if !ok || idx >= len(records) {
			return zoneerr.Wrap(zoneerr.ErrNotFound, nil, "record %s in zone %s", id, zoneName)
		}
		removed := records[idx]
		kept := slices.Delete(slices.Clone(records), idx, idx+1)

		if err := port.Write(ctx, path, []byte(zone.Rebuild(text, class, kept))); err != nil {
			return err
		}
		s.logger.Info("record deleted", "server", t.ID, "zone", zoneName, "name", removed.Name, "type", string(removed.Kind))
		return s.reload(ctx, t, port, zoneName)
	})
}

// DeleteZone removes a zone file.
func (s *Service) DeleteZone(ctx context.Context, t hosts.Target, class zone.Class, name string) error {
	if err := validateZoneName(name, class); err != nil {
		return err
	}

	return s.withPort(ctx, t, true, func(port storage.Port) error {
		path, err := port.ResolvePath(t.ZonesPath, name)
		if err != nil {
			return err
		}
		unlock := s.locks.lock(lockKey(t, path))
		defer unlock()

		if err := port.Remove(ctx, path); err != nil {
			if errors.Is(err, zoneerr.ErrNotFound) {
				return zoneerr.Wrap(zoneerr.ErrNotFound, nil, "zone %s", name)
			}
			return err
		}
		s.logger.Info("zone deleted", "server", t.ID, "zone", name, "class", class.String())
		return s.reload(ctx, t, port, name)
	})
}

// TestConnection opens a session to t, runs a trivial command on remote
// targets and checks that the zones directory exists.
func (s *Service) TestConnection(ctx context.Context, t hosts.Target) (ConnectionResult, error) {
	res := ConnectionResult{Local: t.IsLocal()}
	err := s.withPort(ctx, t, false, func(port storage.Port) error {
		if c, ok := port.(commander); ok {
			out, err := c.ExecuteCommand(ctx, `echo "SSH connection successful"`)
			if err != nil {
				return err
			}
			if out.ExitCode != 0 {
				return zoneerr.Wrap(zoneerr.ErrTransport, nil, "test command exited with %d", out.ExitCode)
			}
		}
		res.ZonesPathExists = port.Exists(ctx, t.ZonesPath)
		return nil
	})
	return res, err
}
