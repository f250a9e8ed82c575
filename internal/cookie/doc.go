// Package cookie reads and writes cookies through an ambient, flat cookie
// string such as a browser's document.cookie.
//
// The ambient string is modelled by the Ambient interface. Reads return
// every visible cookie as "name1=value1; name2=value2"; writes carry one
// cookie with its attributes, "name=value; expires=...; max-age=...; path=/".
//
// Attributes are write-only. A Record rebuilt from the ambient string has
// its Name and Value set and every other field at its default, because the
// host never hands attributes back.
//
// Values are percent-encoded on write and decoded on read, so text holding
// ';', '=' or non-ASCII characters survives the round trip. The legacy
// escape() encoding is deprecated and is neither produced nor recognised.
//
// Deleting a cookie is a store of an empty, already-expired cookie with the
// same name, path and domain. Nothing confirms the host dropped it.
package cookie
