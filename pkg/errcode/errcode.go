package errcode

import (
	"github.com/gnames/gn"
)

const (
	UnknownError gn.ErrorCode = iota

	// File System errors
	CreateDirError
	CopyFileError
	ReadFileError
	WriteFileError

	// Logging errors
	CreateLogFileError

	// Database errors
	DBConnectionError
	DBTableCheckError
	DBNotConnectedError
	DBTableExistsCheckError
	DBQueryTablesError
	DBScanTableError
	DBDropTableError
	DBEmptyDatabaseError

	// Schema errors
	SchemaGORMConnectionError
	SchemaCreateError
	SchemaMigrateError
	SchemaIndexError

	// Sources errors
	SourcesConfigError
	SourcesNoMatchError

	// Survey layer errors
	LayerOpenError
	LayerDecodeError
	LayerProjectionError

	// Pixel map errors
	PixmapGridMismatchError
	PixmapInsertError
	PixmapQueryError
	PixmapCancelledError

	// Extract errors
	ExtractNoPixelsError
	ExtractSourceError
	ExtractWriteError
	ExtractLedgerError
	ExtractAllYearsFailedError
	ExtractAllSourcesFailedError

	// Raster source errors
	RasterRequestError
	RasterDecodeError
	RasterFileOpenError
	RasterVariableError

	// Reshape errors
	ReshapeReadError
	ReshapeInsertError
	ReshapeDeleteError

	// Aggregation errors
	AggrQueryError
	AggrInsertError
	AggrIndexError
)
