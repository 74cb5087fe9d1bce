package adminaction

type ActionType string

const (
	ActionSetStatus        ActionType = "SET_STATUS"
	ActionSetPaymentStatus ActionType = "SET_PAYMENT_STATUS"
	ActionAdjustPrice      ActionType = "ADJUST_PRICE"
	ActionAddRemarks       ActionType = "ADD_REMARKS"
)
