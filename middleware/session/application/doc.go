// Package application contém as regras do gate de sessão: resolução de
// identidade+perfil com timeout e a política prefixo -> papel.
//
// Não conhece net/http; o middleware traduz Outcome em redirect/cookies.
package application
