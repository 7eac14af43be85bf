package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for the systems family (go, rust):
// - Go: functions, methods with receiver-derived container, type blocks
//   (struct/interface/alias), multi-name const/var specs, import specs
//   with aliases, capitalization-based export
// - Rust: fn items, impl methods with the impl type as container,
//   struct/enum/trait/mod items, const and static items, use declarations
//   including as-renames and use lists, pub-based export
// - Keep extracting declarations that survive a syntax error

const goSource = `package billing

import (
	"fmt"
	stdpath "path"
)

const (
	MaxItems = 100
	minItems = 1
)

var ErrEmpty, ErrFull = newErr("empty"), newErr("full")

// Invoice tracks line items.
type Invoice struct {
	Total int
}

type Renderer interface {
	Render() string
}

type Amount = int

// NewInvoice builds an empty invoice.
func NewInvoice() *Invoice {
	return &Invoice{}
}

func (inv *Invoice) Add(amounts ...int) {
	for _, a := range amounts {
		inv.Total += a
	}
}

func newErr(msg string) error {
	return fmt.Errorf("billing: %s", msg)
}
`

func TestExtract_GoFunctions(t *testing.T) {
	t.Parallel()

	symbols := parseAndExtract(t, "go", goSource)

	newInvoice := findSymbol(symbols, "NewInvoice", KindFunction)
	require.NotNil(t, newInvoice)
	assert.Equal(t, "func NewInvoice()", newInvoice.Signature)
	assert.Equal(t, "NewInvoice builds an empty invoice.", newInvoice.Doc)
	assert.True(t, newInvoice.Exported)

	helper := findSymbol(symbols, "newErr", KindFunction)
	require.NotNil(t, helper)
	assert.False(t, helper.Exported, "lowercase function should be unexported")
}

func TestExtract_GoMethodReceiver(t *testing.T) {
	t.Parallel()

	symbols := parseAndExtract(t, "go", goSource)

	add := findSymbol(symbols, "Add", KindMethod)
	require.NotNil(t, add)
	assert.Equal(t, "Invoice", add.Container, "pointer receiver should strip the star")
	require.Len(t, add.Params, 1)
	assert.Equal(t, Param{Name: "amounts", Variadic: true}, add.Params[0])
}

func TestExtract_GoTypes(t *testing.T) {
	t.Parallel()

	symbols := parseAndExtract(t, "go", goSource)

	invoice := findSymbol(symbols, "Invoice", KindStruct)
	require.NotNil(t, invoice)
	assert.Equal(t, "Invoice tracks line items.", invoice.Doc)
	assert.True(t, invoice.Exported)

	renderer := findSymbol(symbols, "Renderer", KindInterface)
	require.NotNil(t, renderer)

	amount := findSymbol(symbols, "Amount", KindType)
	require.NotNil(t, amount, "type alias should be a plain type symbol")
}

func TestExtract_GoValues(t *testing.T) {
	t.Parallel()

	symbols := parseAndExtract(t, "go", goSource)

	max := findSymbol(symbols, "MaxItems", KindConstant)
	require.NotNil(t, max)
	assert.True(t, max.Exported)
	assert.False(t, max.Mutable)

	min := findSymbol(symbols, "minItems", KindConstant)
	require.NotNil(t, min)
	assert.False(t, min.Exported)

	// Multi-name var spec binds every name.
	require.NotNil(t, findSymbol(symbols, "ErrEmpty", KindVariable))
	require.NotNil(t, findSymbol(symbols, "ErrFull", KindVariable))
}

func TestExtract_GoImports(t *testing.T) {
	t.Parallel()

	symbols := parseAndExtract(t, "go", goSource)

	fmtImport := findSymbol(symbols, "fmt", KindImport)
	require.NotNil(t, fmtImport)
	assert.Equal(t, "fmt", fmtImport.SourceModule)
	assert.Empty(t, fmtImport.ImportedName)

	stdpath := findSymbol(symbols, "stdpath", KindImport)
	require.NotNil(t, stdpath, "aliased import binds the alias")
	assert.Equal(t, "path", stdpath.SourceModule)
	assert.Equal(t, "path", stdpath.ImportedName)
}

const rustSource = `use std::collections::HashMap;
use std::io::{Read, Write as IoWrite};
use serde::*;

pub const LIMIT: usize = 10;
static mut COUNTER: u64 = 0;

pub struct Parser {
    buffer: Vec<u8>,
}

pub trait Visit {
    fn visit(&self);
}

enum State {
    Idle,
    Running,
}

mod helpers {
    pub fn reset() {}
}

impl Parser {
    pub fn parse(&mut self, input: &str) -> usize {
        input.len()
    }
}

pub async fn run(parser: Parser) {}
`

func TestExtract_RustItems(t *testing.T) {
	t.Parallel()

	symbols := parseAndExtract(t, "rust", rustSource)

	parser := findSymbol(symbols, "Parser", KindStruct)
	require.NotNil(t, parser)
	assert.True(t, parser.Exported, "pub struct should be exported")

	visit := findSymbol(symbols, "Visit", KindTrait)
	require.NotNil(t, visit)

	state := findSymbol(symbols, "State", KindEnum)
	require.NotNil(t, state)
	assert.False(t, state.Exported)

	helpers := findSymbol(symbols, "helpers", KindModule)
	require.NotNil(t, helpers)

	run := findSymbol(symbols, "run", KindFunction)
	require.NotNil(t, run)
	assert.True(t, run.Async)
	assert.True(t, run.Exported)
}

func TestExtract_RustImplMethod(t *testing.T) {
	t.Parallel()

	symbols := parseAndExtract(t, "rust", rustSource)

	parse := findSymbol(symbols, "parse", KindMethod)
	require.NotNil(t, parse, "impl fn should be a method")
	assert.Equal(t, "Parser", parse.Container)

	reset := findSymbol(symbols, "reset", KindFunction)
	require.NotNil(t, reset, "mod fn is a function, not a method")
}

func TestExtract_RustValues(t *testing.T) {
	t.Parallel()

	symbols := parseAndExtract(t, "rust", rustSource)

	limit := findSymbol(symbols, "LIMIT", KindConstant)
	require.NotNil(t, limit)
	assert.True(t, limit.Exported)
	assert.False(t, limit.Mutable)

	counter := findSymbol(symbols, "COUNTER", KindVariable)
	require.NotNil(t, counter, "static mut should be a mutable variable")
	assert.True(t, counter.Mutable)
}

func TestExtract_RustUses(t *testing.T) {
	t.Parallel()

	symbols := parseAndExtract(t, "rust", rustSource)

	hashMap := findSymbol(symbols, "HashMap", KindImport)
	require.NotNil(t, hashMap)
	assert.Equal(t, "std::collections::HashMap", hashMap.SourceModule)

	read := findSymbol(symbols, "Read", KindImport)
	require.NotNil(t, read, "use list should expand to one symbol per name")
	assert.Equal(t, "std::io::Read", read.SourceModule)

	ioWrite := findSymbol(symbols, "IoWrite", KindImport)
	require.NotNil(t, ioWrite, "as-rename binds the alias")
	assert.Equal(t, "std::io::Write", ioWrite.SourceModule)
	assert.Equal(t, "Write", ioWrite.ImportedName)

	star := findSymbol(symbols, "*", KindImport)
	require.NotNil(t, star, "wildcard use should be recorded")
	assert.Equal(t, "serde", star.SourceModule)
}

func TestExtract_GoBrokenSource(t *testing.T) {
	t.Parallel()

	symbols := parseAndExtract(t, "go", "package w\n\nfunc Good() {}\n\nfunc Bad(( {\n")

	require.NotNil(t, findSymbol(symbols, "Good", KindFunction),
		"declarations before a syntax error survive extraction")
}
