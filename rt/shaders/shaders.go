package shaders

import (
	_ "embed"
)

//go:embed main.wgsl
var MainWGSL string

//go:embed shadow.wgsl
var ShadowWGSL string

//go:embed text.wgsl
var TextWGSL string
