package audit

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/tynkerbase/tynkerbase/internal/configs"
)

const timestampLayout = "2006-01-02T15:04:05.000000Z"

// Operation names.
const (
	OpInit   = "init"
	OpPack   = "pack"
	OpUnpack = "unpack"
	OpKeygen = "keygen"
)

// Entry represents a single audit log entry.
type Entry struct {
	Timestamp string `json:"ts"`
	User      string `json:"user"`
	UserUUID  string `json:"uuid"`
	Operation string `json:"op"`

	// Optional fields depending on operation.
	ArchiveID     string `json:"archive_id,omitempty"`
	ArchivePath   string `json:"archive_path,omitempty"`
	Scheme        string `json:"scheme,omitempty"`
	FileCount     int    `json:"file_count,omitempty"`
	PayloadSize   int    `json:"payload_size,omitempty"`
	PayloadSHA256 string `json:"payload_sha256,omitempty"`
	KeyName       string `json:"key_name,omitempty"`
	ProjectName   string `json:"project_name,omitempty"`
	ProjectUUID   string `json:"project_uuid,omitempty"`
}

// Log appends entry to the log at logPath. An empty logPath or any write
// failure is ignored.
func Log(logPath string, entry Entry) {
	if logPath == "" {
		return
	}
	if entry.Timestamp == "" {
		entry.Timestamp = time.Now().UTC().Format(timestampLayout)
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}

	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return
	}
	// #nosec G302 -- the audit log is meant to be readable by the team.
	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	defer f.Close()

	_, _ = f.Write(append(data, '\n'))
}

// LogWithUser returns an entry for op with the user fields filled in from
// the user config.
func LogWithUser(op string) Entry {
	entry := Entry{Operation: op, User: configs.UserTynkerSettings.Username}

	userConfig, err := configs.LoadUserConfig()
	if err != nil {
		return entry
	}
	if userConfig.User.Name != "" {
		entry.User = userConfig.User.Name
	}
	entry.UserUUID = userConfig.User.UUID
	return entry
}

// ReadEntries reads all entries from the log at logPath. A missing log
// yields no entries.
func ReadEntries(logPath string) ([]Entry, error) {
	data, err := os.ReadFile(logPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return ParseEntries(data)
}

// ParseEntries parses JSON Lines data. Malformed lines are skipped.
func ParseEntries(data []byte) ([]Entry, error) {
	var entries []Entry

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var entry Entry
		if err := json.Unmarshal(line, &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return entries, err
	}
	return entries, nil
}
