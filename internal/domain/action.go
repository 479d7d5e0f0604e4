package domain

// Action is the closed set of Mostro protocol actions, carried on
// every order message's "action" field. Action is a plain string type,
// so an unrecognized action still decodes instead of failing.
type Action string

const (
	ActionNewOrder                    Action = "new-order"
	ActionTakeSell                    Action = "take-sell"
	ActionTakeBuy                     Action = "take-buy"
	ActionPayInvoice                  Action = "pay-invoice"
	ActionAddInvoice                  Action = "add-invoice"
	ActionFiatSent                    Action = "fiat-sent"
	ActionFiatSentOk                  Action = "fiat-sent-ok"
	ActionRelease                     Action = "release"
	ActionReleased                    Action = "released"
	ActionCancel                      Action = "cancel"
	ActionCanceled                    Action = "canceled"
	ActionWaitingBuyerInvoice         Action = "waiting-buyer-invoice"
	ActionWaitingSellerToPay          Action = "waiting-seller-to-pay"
	ActionBuyerTookOrder              Action = "buyer-took-order"
	ActionHoldInvoicePaymentAccepted  Action = "hold-invoice-payment-accepted"
	ActionHoldInvoicePaymentSettled   Action = "hold-invoice-payment-settled"
	ActionHoldInvoicePaymentCanceled  Action = "hold-invoice-payment-canceled"
	ActionCooperativeCancelInitByYou  Action = "cooperative-cancel-initiated-by-you"
	ActionCooperativeCancelInitByPeer Action = "cooperative-cancel-initiated-by-peer"
	ActionCooperativeCancelAccepted   Action = "cooperative-cancel-accepted"
	ActionRate                        Action = "rate"
	ActionRateUser                    Action = "rate-user"
	ActionRateReceived                Action = "rate-received"
	ActionDispute                     Action = "dispute"
	ActionDisputeInitiatedByYou       Action = "dispute-initiated-by-you"
	ActionDisputeInitiatedByPeer      Action = "dispute-initiated-by-peer"
	ActionCantDo                      Action = "cant-do"
	ActionOutOfRangeFiatAmount        Action = "out-of-range-fiat-amount"
	ActionIsNotYourDispute            Action = "is-not-your-dispute"
	ActionNotFound                    Action = "not-found"
	ActionIncorrectInvoiceAmount      Action = "incorrect-invoice-amount"
	ActionInvalidSatsAmount           Action = "invalid-sats-amount"
	ActionOutOfRangeSatsAmount        Action = "out-of-range-sats-amount"
	ActionPaymentFailed               Action = "payment-failed"
	ActionInvoiceUpdated              Action = "invoice-updated"
)

// CantDo is the closed set of refusal reasons a "cant-do" message may
// carry. It is a string type, same pattern as Action, so an unknown
// value still round-trips instead of failing to parse.
type CantDo string

const (
	CantDoOutOfRangeFiatAmount   CantDo = "out-of-range-fiat-amount"
	CantDoIsNotYourDispute       CantDo = "is-not-your-dispute"
	CantDoNotFound               CantDo = "not-found"
	CantDoIncorrectInvoiceAmount CantDo = "incorrect-invoice-amount"
	CantDoInvalidSatsAmount      CantDo = "invalid-sats-amount"
	CantDoOutOfRangeSatsAmount   CantDo = "out-of-range-sats-amount"
	CantDoPaymentFailed          CantDo = "payment-failed"
)
