package bronze

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/parquet-go/parquet-go"
)

const deltaLogDir = "_delta_log"

// Delta transaction log actions. Each commit file holds one action per line.
type deltaAction struct {
	CommitInfo *commitInfo `json:"commitInfo,omitempty"`
	Protocol   *protocol   `json:"protocol,omitempty"`
	MetaData   *metaData   `json:"metaData,omitempty"`
	Add        *addFile    `json:"add,omitempty"`
	Remove     *removeFile `json:"remove,omitempty"`
}

type commitInfo struct {
	Timestamp           int64             `json:"timestamp"`
	Operation           string            `json:"operation"`
	OperationParameters map[string]string `json:"operationParameters"`
	EngineInfo          string            `json:"engineInfo"`
}

type protocol struct {
	MinReaderVersion int `json:"minReaderVersion"`
	MinWriterVersion int `json:"minWriterVersion"`
}

type metaData struct {
	ID               string            `json:"id"`
	Format           deltaFormat       `json:"format"`
	SchemaString     string            `json:"schemaString"`
	PartitionColumns []string          `json:"partitionColumns"`
	Configuration    map[string]string `json:"configuration"`
	CreatedTime      int64             `json:"createdTime"`
}

type deltaFormat struct {
	Provider string            `json:"provider"`
	Options  map[string]string `json:"options"`
}

type addFile struct {
	Path             string            `json:"path"`
	PartitionValues  map[string]string `json:"partitionValues"`
	Size             int64             `json:"size"`
	ModificationTime int64             `json:"modificationTime"`
	DataChange       bool              `json:"dataChange"`
	Stats            string            `json:"stats"`
}

type removeFile struct {
	Path              string `json:"path"`
	DeletionTimestamp int64  `json:"deletionTimestamp"`
	DataChange        bool   `json:"dataChange"`
}

// sparkField is one entry of a Delta schemaString (Spark StructType JSON).
type sparkField struct {
	Name     string            `json:"name"`
	Type     string            `json:"type"`
	Nullable bool              `json:"nullable"`
	Metadata map[string]string `json:"metadata"`
}

type sparkStruct struct {
	Type   string       `json:"type"`
	Fields []sparkField `json:"fields"`
}

// sparkType maps a flat parquet leaf to its Spark SQL type name. Delta
// timestamps are microsecond, so nanosecond columns are rejected.
func sparkType(n parquet.Node) (string, error) {
	t := n.Type()
	lt := t.LogicalType()
	switch t.Kind() {
	case parquet.Boolean:
		return "boolean", nil
	case parquet.Int32:
		if lt != nil && lt.Date != nil {
			return "date", nil
		}
		return "integer", nil
	case parquet.Int64:
		if lt != nil && lt.Timestamp != nil {
			if lt.Timestamp.Unit.Nanos != nil {
				return "", fmt.Errorf("nanosecond timestamps are not readable as delta timestamps")
			}
			return "timestamp", nil
		}
		return "long", nil
	case parquet.Float:
		return "float", nil
	case parquet.Double:
		return "double", nil
	case parquet.ByteArray, parquet.FixedLenByteArray:
		if lt != nil && lt.UTF8 != nil {
			return "string", nil
		}
		return "binary", nil
	default:
		return "string", nil
	}
}

func schemaString(schema *parquet.Schema) (string, error) {
	st := sparkStruct{Type: "struct"}
	for _, f := range schema.Fields() {
		typ, err := sparkType(f)
		if err != nil {
			return "", fmt.Errorf("column %q: %w", f.Name(), err)
		}
		st.Fields = append(st.Fields, sparkField{
			Name:     f.Name(),
			Type:     typ,
			Nullable: f.Optional(),
			Metadata: map[string]string{},
		})
	}
	b, err := json.Marshal(st)
	if err != nil {
		return "", fmt.Errorf("encode delta schema: %w", err)
	}
	return string(b), nil
}

// nextVersion returns the version number the next commit to dir should use.
func nextVersion(tableDir string) (int64, error) {
	entries, err := os.ReadDir(filepath.Join(tableDir, deltaLogDir))
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("list delta log: %w", err)
	}
	var versions []int64
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		v, err := strconv.ParseInt(strings.TrimSuffix(name, ".json"), 10, 64)
		if err != nil {
			continue
		}
		versions = append(versions, v)
	}
	if len(versions) == 0 {
		return 0, nil
	}
	sort.Slice(versions, func(i, j int) bool { return versions[i] < versions[j] })
	return versions[len(versions)-1] + 1, nil
}

func partFileName() string {
	return fmt.Sprintf("part-00000-%s-c000.snappy.parquet", uuid.NewString())
}

// commitDelta appends a commit adding dataFile (relative to tableDir) to the
// table's log. With overwrite set, every file live before the commit is
// removed in the same commit. The first commit also records protocol and table
// metadata.
func commitDelta(tableDir, dataFile string, schema *parquet.Schema, size, numRecords int64, overwrite bool, now time.Time) (int64, error) {
	version, err := nextVersion(tableDir)
	if err != nil {
		return 0, err
	}

	mode := "Append"
	if overwrite {
		mode = "Overwrite"
	}
	ms := now.UnixMilli()
	actions := []deltaAction{{CommitInfo: &commitInfo{
		Timestamp:           ms,
		Operation:           "WRITE",
		OperationParameters: map[string]string{"mode": mode},
		EngineInfo:          "psplake",
	}}}

	if overwrite && version > 0 {
		live, err := DataFiles(tableDir)
		if err != nil {
			return 0, err
		}
		for _, p := range live {
			actions = append(actions, deltaAction{Remove: &removeFile{Path: p, DeletionTimestamp: ms, DataChange: true}})
		}
	}

	if version == 0 {
		ss, err := schemaString(schema)
		if err != nil {
			return 0, err
		}
		actions = append(actions,
			deltaAction{Protocol: &protocol{MinReaderVersion: 1, MinWriterVersion: 2}},
			deltaAction{MetaData: &metaData{
				ID:               uuid.NewString(),
				Format:           deltaFormat{Provider: "parquet", Options: map[string]string{}},
				SchemaString:     ss,
				PartitionColumns: []string{},
				Configuration:    map[string]string{},
				CreatedTime:      ms,
			}},
		)
	}

	stats, err := json.Marshal(map[string]int64{"numRecords": numRecords})
	if err != nil {
		return 0, fmt.Errorf("encode add stats: %w", err)
	}
	actions = append(actions, deltaAction{Add: &addFile{
		Path:             dataFile,
		PartitionValues:  map[string]string{},
		Size:             size,
		ModificationTime: ms,
		DataChange:       true,
		Stats:            string(stats),
	}})

	logDir := filepath.Join(tableDir, deltaLogDir)
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return 0, fmt.Errorf("create delta log dir: %w", err)
	}
	path := filepath.Join(logDir, fmt.Sprintf("%020d.json", version))

	// O_EXCL makes a concurrent writer that picked the same version fail.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return 0, fmt.Errorf("create delta commit %d: %w", version, err)
	}
	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, a := range actions {
		if err := enc.Encode(a); err != nil {
			f.Close()
			return 0, fmt.Errorf("write delta commit %d: %w", version, err)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return 0, fmt.Errorf("flush delta commit %d: %w", version, err)
	}
	if err := f.Close(); err != nil {
		return 0, fmt.Errorf("close delta commit %d: %w", version, err)
	}
	return version, nil
}

// DataFiles replays the table's log and returns the live data files, relative
// to tableDir, in commit order.
func DataFiles(tableDir string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(tableDir, deltaLogDir))
	if err != nil {
		return nil, fmt.Errorf("list delta log: %w", err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var files []string
	live := map[string]bool{}
	for _, name := range names {
		f, err := os.Open(filepath.Join(tableDir, deltaLogDir, name))
		if err != nil {
			return nil, fmt.Errorf("open delta commit: %w", err)
		}
		dec := json.NewDecoder(f)
		for dec.More() {
			var a deltaAction
			if err := dec.Decode(&a); err != nil {
				f.Close()
				return nil, fmt.Errorf("decode delta commit %s: %w", name, err)
			}
			switch {
			case a.Add != nil:
				if _, seen := live[a.Add.Path]; !seen {
					files = append(files, a.Add.Path)
				}
				live[a.Add.Path] = true
			case a.Remove != nil:
				live[a.Remove.Path] = false
			}
		}
		f.Close()
	}

	out := files[:0]
	for _, p := range files {
		if live[p] {
			out = append(out, p)
		}
	}
	return out, nil
}

// IsDeltaTable reports whether dir holds a Delta transaction log.
func IsDeltaTable(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, deltaLogDir))
	return err == nil && info.IsDir()
}
