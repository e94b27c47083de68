package service

// Notification texts shown in the portals and pushed to Telegram.
var messages = map[string]string{
	"welcome_title":         "Bem-vindo(a)!",
	"welcome_body":          "Sua conta foi criada com sucesso.",
	"welcome_driver_body":   "Sua conta foi criada. Aguarde a aprovação de um administrador para começar a entregar.",
	"driver_signup_title":   "Novo entregador",
	"driver_signup_body":    "%s se cadastrou e aguarda aprovação.",
	"approved_title":        "Cadastro aprovado",
	"approved_body":         "Você já pode aceitar entregas.",
	"blocked_title":         "Conta bloqueada",
	"blocked_body":          "Sua conta foi bloqueada. Entre em contato com o suporte.",
	"unblocked_title":       "Conta desbloqueada",
	"unblocked_body":        "Sua conta foi desbloqueada.",
	"order_created_title":   "Pedido criado",
	"order_created_body":    "Pedido #%d criado. Valor: %s.",
	"order_accepted_title":  "Pedido aceito",
	"order_accepted_body":   "%s aceitou seu pedido #%d.",
	"order_picked_title":    "Pedido coletado",
	"order_picked_body":     "Seu pedido #%d foi coletado e está a caminho.",
	"order_delivered_title": "Pedido entregue",
	"order_delivered_body":  "Seu pedido #%d foi entregue. Avalie o entregador!",
	"order_cancelled_title": "Pedido cancelado",
	"order_cancelled_body":  "O pedido #%d foi cancelado.",
	"order_expired_body":    "O pedido #%d foi cancelado por não ter sido aceito em tempo.",
	"earning_title":         "Entrega concluída",
	"earning_body":          "Você ganhou %s pela entrega do pedido #%d.",
	"rated_title":           "Nova avaliação",
	"rated_body":            "Você recebeu %d estrela(s) no pedido #%d.",
	"rank_title":            "Novo nível",
	"rank_body":             "Seu nível agora é %s.",
	"withdrawal_new_title":  "Novo saque",
	"withdrawal_new_body":   "Saque #%d de %s aguardando análise.",
	"withdrawal_ok_title":   "Saque aprovado",
	"withdrawal_ok_body":    "Seu saque #%d de %s foi aprovado.",
	"withdrawal_no_title":   "Saque recusado",
	"withdrawal_no_body":    "Seu saque #%d de %s foi recusado: %s",
	"withdrawal_paid_title": "Saque pago",
	"withdrawal_paid_body":  "Seu saque #%d de %s foi pago via PIX.",
}
