// Package session fornece o gate HTTP (net/http) de sessão e papel.
//
// Camadas, como em middleware/ratelimit:
//
//   - domain: papéis, sessão, contratos de identidade e perfil
//   - application: política prefixo -> papel e resolução com timeout
//   - infra: JWT em cookie e adapter do repositório de perfis
//   - session (este pacote): middleware HTTP, cookies e redirects
//
// Deve rodar depois do rate limit: os headers X-RateLimit-* já gravados na
// resposta seguem junto com o redirect ou com a resposta do próximo handler.
package session
