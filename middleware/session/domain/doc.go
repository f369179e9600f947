// Package domain define papéis, sessão e os contratos externos do gate de sessão
// (provedor de identidade e store de perfis).
//
// Este pacote não depende de net/http: credenciais circulam como Credential.
package domain
