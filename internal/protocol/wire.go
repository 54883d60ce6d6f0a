package protocol

import (
	"github.com/touchhouse/touchhouse/internal/catalog"
	"github.com/touchhouse/touchhouse/internal/engine"
	"github.com/touchhouse/touchhouse/internal/errs"
	"github.com/touchhouse/touchhouse/internal/exec"
	"github.com/touchhouse/touchhouse/internal/types"
)

// requestWire is the JSON envelope decoded off the wire. Exactly one of the
// op-named fields is set, matching the requested Op (spec §2 item 12: this
// is a shallow JSON stand-in, not the production MessagePack protocol).
type requestWire struct {
	Op             string              `json:"op"`
	CreateDatabase *createDatabaseWire `json:"create_database,omitempty"`
	DropDatabase   *dropDatabaseWire   `json:"drop_database,omitempty"`
	CreateTable    *createTableWire    `json:"create_table,omitempty"`
	DropTable      *dropTableWire      `json:"drop_table,omitempty"`
	Insert         *insertWire         `json:"insert,omitempty"`
	Scan           *scanWire           `json:"scan,omitempty"`
}

type createDatabaseWire struct {
	Name        string `json:"name"`
	IfNotExists bool   `json:"if_not_exists"`
}

type dropDatabaseWire struct {
	Name     string `json:"name"`
	IfExists bool   `json:"if_exists"`
}

type columnWire struct {
	Name     string `json:"name"`
	DataType string `json:"data_type"`
	Nullable bool   `json:"nullable"`
}

type createTableWire struct {
	Database    string       `json:"database"`
	Name        string       `json:"name"`
	Columns     []columnWire `json:"columns"`
	OrderBy     []string     `json:"order_by"`
	PrimaryKey  []string     `json:"primary_key"`
	Engine      string       `json:"engine"`
	GranuleSize int          `json:"granule_size"`
	IfNotExists bool         `json:"if_not_exists"`
}

type dropTableWire struct {
	Database string `json:"database"`
	Table    string `json:"table"`
	IfExists bool   `json:"if_exists"`
}

type insertWire struct {
	Database string        `json:"database"`
	Table    string        `json:"table"`
	Columns  []string      `json:"columns"`
	Rows     [][]valueWire `json:"rows"`
}

type scanWire struct {
	Database   string         `json:"database"`
	Table      string         `json:"table"`
	Projection []string       `json:"projection"`
	Predicate  *predicateWire `json:"predicate,omitempty"`
	OrderBy    []string       `json:"order_by"`
	Offset     int            `json:"offset"`
	Limit      int            `json:"limit"`
}

// valueWire tags a scalar with its DataType so a JSON number can be decoded
// into the right concrete Go representation (spec's Value model has eleven
// concrete kinds; JSON alone only distinguishes float64/string/bool/null).
// An empty Type with Value omitted represents Null.
type valueWire struct {
	Type  string `json:"type,omitempty"`
	Value any    `json:"value,omitempty"`
}

type predicateWire struct {
	And     *andOrWire     `json:"and,omitempty"`
	Or      *andOrWire     `json:"or,omitempty"`
	Not     *predicateWire `json:"not,omitempty"`
	Compare *compareWire   `json:"compare,omitempty"`
}

type andOrWire struct {
	Left  *predicateWire `json:"left"`
	Right *predicateWire `json:"right"`
}

type compareWire struct {
	Column  string    `json:"column"`
	Op      string    `json:"op"`
	Literal valueWire `json:"literal"`
}

// responseWire is the JSON envelope written back. On success Output carries
// the result (nil for DDL/Insert); on failure Error/Kind are set and Output
// is omitted.
type responseWire struct {
	Error  string           `json:"error,omitempty"`
	Kind   string           `json:"kind,omitempty"`
	Output *outputTableWire `json:"output,omitempty"`
}

type outputTableWire struct {
	Columns []string      `json:"columns"`
	Rows    [][]valueWire `json:"rows"`
}

func decodeValue(v valueWire) (types.Value, error) {
	if v.Type == "" {
		return nil, nil
	}
	dt, err := types.ParseDataType(v.Type)
	if err != nil {
		return nil, errs.Wrap(errs.Internal, err, "decoding value")
	}
	return decodeScalar(dt, v.Value)
}

func decodeScalar(dt types.DataType, raw any) (types.Value, error) {
	if raw == nil {
		return nil, nil
	}
	switch dt {
	case types.TypeString:
		s, ok := raw.(string)
		if !ok {
			return nil, errs.New(errs.Internal, "expected string value for %s, got %T", dt.Name(), raw)
		}
		return s, nil
	case types.TypeBool:
		b, ok := raw.(bool)
		if !ok {
			return nil, errs.New(errs.Internal, "expected bool value for %s, got %T", dt.Name(), raw)
		}
		return b, nil
	case types.TypeUuid:
		s, ok := raw.(string)
		if !ok {
			return nil, errs.New(errs.Internal, "expected hex string for Uuid, got %T", raw)
		}
		return parseUuidHex(s)
	default:
		n, ok := raw.(float64)
		if !ok {
			return nil, errs.New(errs.Internal, "expected numeric value for %s, got %T", dt.Name(), raw)
		}
		return intoInteger(dt, n)
	}
}

func intoInteger(dt types.DataType, n float64) (types.Value, error) {
	switch dt {
	case types.TypeInt8:
		return int8(n), nil
	case types.TypeInt16:
		return int16(n), nil
	case types.TypeInt32:
		return int32(n), nil
	case types.TypeInt64:
		return int64(n), nil
	case types.TypeUInt8:
		return uint8(n), nil
	case types.TypeUInt16:
		return uint16(n), nil
	case types.TypeUInt32:
		return uint32(n), nil
	case types.TypeUInt64:
		return uint64(n), nil
	default:
		return nil, errs.New(errs.Internal, "unrecognized integer data type %s", dt.Name())
	}
}

func parseUuidHex(s string) (types.Uuid, error) {
	var u types.Uuid
	clean := make([]byte, 0, 32)
	for i := 0; i < len(s); i++ {
		if s[i] == '-' {
			continue
		}
		clean = append(clean, s[i])
	}
	if len(clean) != 32 {
		return u, errs.New(errs.Internal, "malformed uuid %q", s)
	}
	for i := 0; i < 16; i++ {
		hi, err := hexNibble(clean[i*2])
		if err != nil {
			return u, err
		}
		lo, err := hexNibble(clean[i*2+1])
		if err != nil {
			return u, err
		}
		u[i] = hi<<4 | lo
	}
	return u, nil
}

func hexNibble(c byte) (byte, error) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', nil
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, nil
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, nil
	default:
		return 0, errs.New(errs.Internal, "invalid hex digit %q", c)
	}
}

func parseOp(s string) (types.CompareOp, error) {
	switch s {
	case "eq":
		return types.OpEQ, nil
	case "ne":
		return types.OpNE, nil
	case "lt":
		return types.OpLT, nil
	case "le":
		return types.OpLE, nil
	case "gt":
		return types.OpGT, nil
	case "ge":
		return types.OpGE, nil
	default:
		return 0, errs.New(errs.Internal, "unrecognized comparison operator %q", s)
	}
}

func decodePredicate(w *predicateWire) (exec.Predicate, error) {
	if w == nil {
		return nil, nil
	}
	switch {
	case w.And != nil:
		left, err := decodePredicate(w.And.Left)
		if err != nil {
			return nil, err
		}
		right, err := decodePredicate(w.And.Right)
		if err != nil {
			return nil, err
		}
		return exec.And{Left: left, Right: right}, nil
	case w.Or != nil:
		left, err := decodePredicate(w.Or.Left)
		if err != nil {
			return nil, err
		}
		right, err := decodePredicate(w.Or.Right)
		if err != nil {
			return nil, err
		}
		return exec.Or{Left: left, Right: right}, nil
	case w.Not != nil:
		operand, err := decodePredicate(w.Not)
		if err != nil {
			return nil, err
		}
		return exec.Not{Operand: operand}, nil
	case w.Compare != nil:
		op, err := parseOp(w.Compare.Op)
		if err != nil {
			return nil, err
		}
		literal, err := decodeValue(w.Compare.Literal)
		if err != nil {
			return nil, err
		}
		return exec.Compare{Column: w.Compare.Column, Op: op, Literal: literal}, nil
	default:
		return nil, nil
	}
}

func decodeColumns(cols []columnWire) ([]catalog.ColumnDef, error) {
	out := make([]catalog.ColumnDef, len(cols))
	for i, c := range cols {
		dt, err := types.ParseDataType(c.DataType)
		if err != nil {
			return nil, errs.Wrap(errs.Internal, err, "column %q", c.Name)
		}
		out[i] = catalog.ColumnDef{Name: c.Name, DataType: dt, Nullable: c.Nullable, TypeName: dt.Name()}
	}
	return out, nil
}

func decodeRows(rows [][]valueWire) ([][]types.Value, error) {
	out := make([][]types.Value, len(rows))
	for i, row := range rows {
		values := make([]types.Value, len(row))
		for j, v := range row {
			val, err := decodeValue(v)
			if err != nil {
				return nil, err
			}
			values[j] = val
		}
		out[i] = values
	}
	return out, nil
}

// decode turns a requestWire into the engine.PhysicalPlan it names.
func decode(req requestWire) (engine.PhysicalPlan, error) {
	switch req.Op {
	case "create_database":
		if req.CreateDatabase == nil {
			return nil, errs.New(errs.Internal, "missing create_database payload")
		}
		return engine.CreateDatabase{Name: req.CreateDatabase.Name, IfNotExists: req.CreateDatabase.IfNotExists}, nil
	case "drop_database":
		if req.DropDatabase == nil {
			return nil, errs.New(errs.Internal, "missing drop_database payload")
		}
		return engine.DropDatabase{Name: req.DropDatabase.Name, IfExists: req.DropDatabase.IfExists}, nil
	case "create_table":
		if req.CreateTable == nil {
			return nil, errs.New(errs.Internal, "missing create_table payload")
		}
		w := req.CreateTable
		columns, err := decodeColumns(w.Columns)
		if err != nil {
			return nil, err
		}
		return engine.CreateTable{
			Database:    w.Database,
			IfNotExists: w.IfNotExists,
			Def: catalog.TableDef{
				Name:        w.Name,
				Columns:     columns,
				OrderBy:     w.OrderBy,
				PrimaryKey:  w.PrimaryKey,
				Engine:      catalog.Engine(w.Engine),
				GranuleSize: w.GranuleSize,
			},
		}, nil
	case "drop_table":
		if req.DropTable == nil {
			return nil, errs.New(errs.Internal, "missing drop_table payload")
		}
		return engine.DropTable{Database: req.DropTable.Database, Table: req.DropTable.Table, IfExists: req.DropTable.IfExists}, nil
	case "insert":
		if req.Insert == nil {
			return nil, errs.New(errs.Internal, "missing insert payload")
		}
		rows, err := decodeRows(req.Insert.Rows)
		if err != nil {
			return nil, err
		}
		return engine.Insert{Database: req.Insert.Database, Table: req.Insert.Table, Columns: req.Insert.Columns, Rows: rows}, nil
	case "scan":
		if req.Scan == nil {
			return nil, errs.New(errs.Internal, "missing scan payload")
		}
		pred, err := decodePredicate(req.Scan.Predicate)
		if err != nil {
			return nil, err
		}
		return engine.Scan{
			Database:   req.Scan.Database,
			Table:      req.Scan.Table,
			Projection: req.Scan.Projection,
			Predicate:  pred,
			OrderBy:    req.Scan.OrderBy,
			Offset:     req.Scan.Offset,
			Limit:      req.Scan.Limit,
		}, nil
	default:
		return nil, errs.New(errs.Unsupported, "unrecognized op %q", req.Op)
	}
}

func encodeValue(dt types.DataType, v types.Value) valueWire {
	if v == nil {
		return valueWire{}
	}
	if dt == types.TypeUuid {
		u := v.(types.Uuid)
		return valueWire{Type: dt.Name(), Value: formatUuidHex(u)}
	}
	return valueWire{Type: dt.Name(), Value: v}
}

func formatUuidHex(u types.Uuid) string {
	const hexDigits = "0123456789abcdef"
	out := make([]byte, 32)
	for i, b := range u {
		out[i*2] = hexDigits[b>>4]
		out[i*2+1] = hexDigits[b&0x0f]
	}
	return string(out)
}

func encodeOutput(out *engine.OutputTable) *outputTableWire {
	if out == nil {
		return nil
	}
	w := &outputTableWire{Columns: out.ColumnNames}
	nRows := out.NumRows()
	w.Rows = make([][]valueWire, nRows)
	for r := 0; r < nRows; r++ {
		row := make([]valueWire, len(out.Columns))
		for c, col := range out.Columns {
			row[c] = encodeValue(col.DataType(), col.Value(r))
		}
		w.Rows[r] = row
	}
	return w
}
