package shaders

//
// Embedded GLSL shader sources
//

import _ "embed"

//go:embed vert.glsl
var Vert string

// Frag is a text/template, see FragData
//
//go:embed frag.glsl
var Frag string

// FragData is what Frag is executed with
type FragData struct {
	// float precision qualifier: lowp, mediump or highp
	Precision string
}

const DefaultPrecision = "mediump"

// ValidPrecision reports whether p is a GLSL ES precision qualifier
func ValidPrecision(p string) bool {
	switch p {
	case "lowp", "mediump", "highp":
		return true
	}
	return false
}
