// Package openapi derives reset policies for repeatable groups from the
// property defaults of OpenAPI 3 component schemas, so a cloned phone row
// starts with the same phone_type the API would assume.
package openapi
