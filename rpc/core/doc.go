/*
Package core defines the alexandria RPC endpoints.

Every endpoint is served both as JSON-RPC 2.0 (POST to "/", single or batch,
and over the websocket at "/websocket") and as a URI route ("/sign_digest?...").

## Get the list

An HTTP Get request to the root RPC endpoint shows a list of available endpoints.

```bash
curl "http://localhost:8095"
```

## Encoding

Binary values (digests, signatures, serialized transactions, chain ids) are
lower-case hex. Private keys are WIF strings and public keys are prefixed
strings such as "SPH6Lf...". Signed transactions are JSON objects.

## Example

```bash
curl -s localhost:8095 -d '{"jsonrpc":"2.0","id":1,"method":"get_public_key","params":{"private_key":"5HpHagT65TZzG1PH3CSu63k8DbpvD8s5ip4nEB3kEsreAnchuDf"}}'
```

> Response:

```json
{"jsonrpc":"2.0","id":1,"result":{"public_key":"SPH5p78kHbL33Rn3JWkTWRE2B9uz6gy4r1KbfAKLNQGE3ovMBS5bu"}}
```

## Errors

Failures of the signing engine are reported with codes in the JSON-RPC server
error range, one per error kind (see CodeInvalidKey and following). Malformed
hex parameters are reported as -32602 (Invalid params).
*/
package core
