// Package infra contém as implementações concretas dos contratos do gate de sessão:
//
//   - JWTProvider: token de acesso HS256 em cookie, com rotação perto da expiração
//   - ProfileStore: adapter do repositório de perfis (internal/store)
package infra
