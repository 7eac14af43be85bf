package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for the markup family (php):
// - Extract functions and class methods from inside php tags
// - Container/visibility/static handling on methods
// - Classes, interfaces, traits, namespaces
// - const declarations inside and outside classes
// - use declarations with aliases
// - HTML outside php tags yields no symbols
// - Keep extracting declarations that survive a syntax error

const phpSource = `<html><body>
<?php
namespace App\Billing;

use App\Models\User;
use App\Support\Arr as ArrayHelper;

const VERSION = "1.0";

function format_total($total, $currency = "USD") {
    return $currency . $total;
}

interface Payable {
    public function pay();
}

trait Notifies {
    public function notify() {}
}

class Invoice {
    const STATUS_OPEN = "open";

    public static function create() {
        return new self();
    }

    private function seal() {}
}
?>
</body></html>
`

func TestExtract_PHPFunctions(t *testing.T) {
	t.Parallel()

	symbols := parseAndExtract(t, "php", phpSource)

	format := findSymbol(symbols, "format_total", KindFunction)
	require.NotNil(t, format, "function inside php tags should be extracted")
	require.Len(t, format.Params, 2)
	assert.Equal(t, Param{Name: "$total"}, format.Params[0])
	assert.Equal(t, Param{Name: "$currency", Default: true}, format.Params[1])
}

func TestExtract_PHPClassMembers(t *testing.T) {
	t.Parallel()

	symbols := parseAndExtract(t, "php", phpSource)

	invoice := findSymbol(symbols, "Invoice", KindClass)
	require.NotNil(t, invoice)

	create := findSymbol(symbols, "create", KindMethod)
	require.NotNil(t, create)
	assert.Equal(t, "Invoice", create.Container)
	assert.Equal(t, "Invoice::create()", create.Signature)
	assert.True(t, create.Static)
	assert.True(t, create.Exported)

	seal := findSymbol(symbols, "seal", KindMethod)
	require.NotNil(t, seal)
	assert.False(t, seal.Exported, "private method should not be exported")

	status := findSymbol(symbols, "STATUS_OPEN", KindConstant)
	require.NotNil(t, status, "class const should be extracted")
	assert.Equal(t, "Invoice", status.Container)
}

func TestExtract_PHPTypesAndNamespace(t *testing.T) {
	t.Parallel()

	symbols := parseAndExtract(t, "php", phpSource)

	require.NotNil(t, findSymbol(symbols, "Payable", KindInterface))
	require.NotNil(t, findSymbol(symbols, "Notifies", KindTrait))

	ns := findSymbol(symbols, `App\Billing`, KindModule)
	require.NotNil(t, ns, "namespace should be a module symbol")

	version := findSymbol(symbols, "VERSION", KindConstant)
	require.NotNil(t, version)
	assert.Empty(t, version.Container)
}

func TestExtract_PHPUses(t *testing.T) {
	t.Parallel()

	symbols := parseAndExtract(t, "php", phpSource)

	user := findSymbol(symbols, "User", KindImport)
	require.NotNil(t, user)
	assert.Equal(t, `App\Models\User`, user.SourceModule)
	assert.Empty(t, user.ImportedName)

	arr := findSymbol(symbols, "ArrayHelper", KindImport)
	require.NotNil(t, arr, "aliased use binds the alias")
	assert.Equal(t, `App\Support\Arr`, arr.SourceModule)
	assert.Equal(t, "Arr", arr.ImportedName)
}

func TestExtract_PHPPlainHTML(t *testing.T) {
	t.Parallel()

	symbols := parseAndExtract(t, "php", "<html><body><p>hello</p></body></html>")
	assert.Empty(t, symbols, "markup without php code has no symbols")
}

func TestExtract_PHPBrokenSource(t *testing.T) {
	t.Parallel()

	symbols := parseAndExtract(t, "php", "<?php\nfunction good() {}\nfunction bad(( {\n")

	require.NotNil(t, findSymbol(symbols, "good", KindFunction),
		"declarations before a syntax error survive extraction")
}
