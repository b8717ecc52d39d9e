package host

import (
	"fmt"
	"strings"

	"psbrowse/pkg/pstypes"
)

// jsonDepth covers help records, whose examples nest four levels below the root.
const jsonDepth = 8

// Quote renders s as a single-quoted PowerShell string literal.
func Quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// Sanitize reduces a script to one line so the host reads it as a single statement.
func Sanitize(script string) string {
	replacer := strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")
	return strings.TrimSpace(replacer.Replace(script))
}

// preambleScript prepares a fresh host: plain-text rendering, UTF-8 output,
// and the projection helpers used by the query scripts.
const preambleScript = `$ErrorActionPreference = 'Stop'; $ProgressPreference = 'SilentlyContinue'; ` +
	`try { [Console]::OutputEncoding = [System.Text.Encoding]::UTF8 } catch { }; ` +
	`if ($PSStyle) { $PSStyle.OutputRendering = 'PlainText' }; ` +
	`function __psbType($t) { if ($null -eq $t) { return $null }; ` +
	`$u = [System.Nullable]::GetUnderlyingType($t); ` +
	`$e = $(if ($t.IsArray) { $t.GetElementType().Name } elseif ($u) { $u.Name } else { $null }); ` +
	`[pscustomobject]@{ Name = $t.Name; IsArray = $t.IsArray; IsNullable = ($null -ne $u); ` +
	`IsSwitch = ($t -eq [System.Management.Automation.SwitchParameter]); IsBoolean = ($t -eq [bool]); Elem = $e } }; ` +
	`function __psbParam($p) { [pscustomobject]@{ Name = $p.Name; Type = (__psbType $p.ParameterType); ` +
	`Aliases = @($p.Aliases); Attributes = @($p.Attributes | Where-Object { $_ -is [System.Management.Automation.ParameterAttribute] } | ` +
	`ForEach-Object { [pscustomobject]@{ ParameterSetName = $_.ParameterSetName; Mandatory = $_.Mandatory; Position = $_.Position; ` +
	`ValueFromPipeline = $_.ValueFromPipeline; ValueFromPipelineByPropertyName = $_.ValueFromPipelineByPropertyName } }) } }; ` +
	`function __psbSet($s) { [pscustomobject]@{ Name = $s.Name; IsDefault = $s.IsDefault; ` +
	`Parameters = @($s.Parameters | ForEach-Object { [pscustomobject]@{ Name = $_.Name; Type = (__psbType $_.ParameterType); ` +
	`IsMandatory = $_.IsMandatory; Position = $_.Position; ValueFromPipeline = $_.ValueFromPipeline; ` +
	`ValueFromPipelineByPropertyName = $_.ValueFromPipelineByPropertyName; Aliases = @($_.Aliases) } }) } }`

// envelope wraps body so the host prints one compact JSON line of the form
// {"ok":bool,"data":...,"error":...} followed by the sentinel line.
func envelope(body, sentinel string) string {
	return Sanitize(fmt.Sprintf(
		`try { $__d = %s; [pscustomobject]@{ ok = $true; data = $__d; error = $null } | ConvertTo-Json -Compress -Depth %d -WarningAction SilentlyContinue } `+
			`catch { [pscustomobject]@{ ok = $false; data = $null; error = $_.Exception.Message } | ConvertTo-Json -Compress -Depth 2 }; `+
			`Write-Output %s`,
		body, jsonDepth, Quote(sentinel)))
}

func listCommandsScript(kinds []pstypes.CommandType) string {
	names := make([]string, 0, len(kinds))
	for _, k := range kinds {
		names = append(names, k.String())
	}
	return fmt.Sprintf(
		`@(Get-Command -CommandType %s -ErrorAction SilentlyContinue | ForEach-Object { `+
			`[pscustomobject]@{ Name = $_.Name; ModuleName = $_.ModuleName; CommandType = $_.CommandType.ToString(); Source = $_.Source } })`,
		strings.Join(names, ","))
}

func commandInfoScript(name string) string {
	return fmt.Sprintf(
		`$(Get-Command -Name %s -ErrorAction SilentlyContinue | Select-Object -First 1 | ForEach-Object { $c = $_; `+
			`$sets = @(); try { $sets = @($c.ParameterSets | ForEach-Object { __psbSet $_ }) } catch { }; `+
			`$params = @(); if ($c.Parameters) { $params = @($c.Parameters.Values | ForEach-Object { __psbParam $_ }) }; `+
			`[pscustomobject]@{ Name = $c.Name; ModuleName = $c.ModuleName; CommandType = $c.CommandType.ToString(); `+
			`Source = $c.Source; ParameterSets = $sets; Parameters = $params } })`,
		Quote(name))
}

func helpFullScript(name string) string {
	return fmt.Sprintf(`$(Get-Help -Name %s -Full -ErrorAction SilentlyContinue | Select-Object -First 1)`, Quote(name))
}

func syntaxTextScript(name string) string {
	return fmt.Sprintf(`[string](Get-Command -Name %s -Syntax -ErrorAction SilentlyContinue | Out-String)`, Quote(name))
}

const versionScript = `$PSVersionTable.PSVersion.ToString()`
