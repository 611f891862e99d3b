// Package style resolves the presentation of a rendered graph.
//
// # Class tokens
//
// [ClassToken] turns free-form node and edge type strings into CSS
// identifiers. It is pure and idempotent, so selectors written against a
// theme keep matching from release to release. Distinct inputs can collapse
// to the same token ("Web Server" and "web_server" both become
// "web-server"); that is accepted, not a bug.
//
// # Themes
//
// [ResolveTheme] picks the stylesheet for a render, in order:
//
//  1. explicit CSS text, which wins outright
//  2. a theme file: .css is used verbatim, .scss and .sass go through a
//     [Compiler] such as [SassCLI]
//  3. the bundled default theme ([DefaultThemeCSS])
//
// When embedding is disabled the CSS is still resolved (and a compile
// failure is only a warning), but callers must not inline it.
//
// # Attribute defaults
//
// [Attrs] records carry the presentation attributes drawn on node, port and
// edge shapes. User overrides are merged over [DefaultNodeAttrs],
// [DefaultPortAttrs] and [DefaultEdgeAttrs].
//
// # Profiles
//
// A profile bundle is an externally produced JSON or YAML document carrying
// a rendered stylesheet. [ParseProfile] validates it and [Profile.ThemeOptions]
// selects its CSS as an embedded theme.
package style
