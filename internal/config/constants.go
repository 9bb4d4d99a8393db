package config

// Version is the current jankgo version.
var Version = "0.1.0"

const SourceFileExt = ".js"

// SourceFileExtensions are all recognized source file extensions.
var SourceFileExtensions = []string{".js"}

// HasSourceExt returns true if the path ends with a recognized source extension.
func HasSourceExt(path string) bool {
	for _, ext := range SourceFileExtensions {
		if len(path) >= len(ext) && path[len(path)-len(ext):] == ext {
			return true
		}
	}
	return false
}

// IsTestMode defaults to false; nothing in the module sets or reads it.
var IsTestMode = false

// Wasm/heap layout constants (§4.6.2, §3.5 of the spec).
const (
	// WordAlignment is the alignment W every heap allocation's Tag observes.
	WordAlignment = 8
	TagSize       = 4
	LengthSize    = 4
	FnObjSize     = 4
	AnySize       = 8
)

// Any discriminant tags (§4.6.1).
const (
	AnyTagI32       = 0
	AnyTagF64       = 1
	AnyTagBool      = 2
	AnyTagPtr       = 3
	AnyTagClosure   = 4
	AnyTagUndefined = 5
	AnyTagNull      = 6
)

// Heap tag type_tag values (§3.5).
const (
	HeapTagClass = iota
	HeapTagString
	HeapTagArray
	HeapTagHT
	HeapTagEnv
	HeapTagRef
	HeapTagClosure
	HeapTagF64
	HeapTagObjectPtrPtr
)

// NameGenPrefix marks every compiler-generated identifier. Source programs
// cannot produce identifiers with this prefix, so freshness is guaranteed
// without consulting the symbol table.
const NameGenPrefix = "jank$"
