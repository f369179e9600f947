// Package infra contém implementações concretas (infraestrutura) para os contratos
// definidos no pacote domain.
//
// Exemplos:
//   - MemoryStore: janela fixa por chave em memória, com poda oportunista
//   - RedisStore: janela fixa compartilhada via script Lua (INCR + PEXPIRE)
//   - Stats: memória, hashes no Redis ou contadores Prometheus
package infra
