// Package recmap maps structured documents (JSON, YAML, TOML value trees)
// onto fixed-layout binary records such as C structs.
//
// A Record is built once from Field declarations and shared freely:
//
//	rec, err := recmap.NewRecord("config_t", []recmap.Field{
//		recmap.StructField("device",
//			recmap.UintField("id", 32),
//			recmap.BytesField("name", 16),
//		),
//		recmap.UintField("version", 16),
//		recmap.MatrixField("matrix", recmap.KindInt, 16, 2, 2),
//	})
//
// Documents are value trees (Node), produced by the drivers under source/
// or built directly:
//
//	root, _, err := recmap.DecodeSource(recmap.JSONBytes(data))
//	if iss := recmap.Validate(rec, root); len(iss) > 0 {
//		// every problem, in field order
//	}
//	enc, err := recmap.Encode(rec, root, recmap.Options{ByteOrder: recmap.BigEndian})
//
// Data problems are Issues (path, code, message) and implement error.
// Broken schemas fail NewRecord with *SchemaError. Encode treats coercion
// failures other than over-long strings as *InvariantError, since Validate
// should have caught them.
package recmap
