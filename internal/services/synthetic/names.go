package synthetic

// StockNames are the display names used for generated entries
var StockNames = []string{
	"JACK WATSON", "EMMA BROWN", "OLIVER JONES", "AVA TAYLOR", "LUCAS CLARK",
	"MIA HARRIS", "LIAM WILSON", "SOPHIA MARTIN", "NOAH THOMPSON", "ISLA MOORE",
	"ELIJAH WHITE", "GRACE HALL", "HARPER ALLEN", "HENRY YOUNG", "ELLA KING",
	"JAMES WRIGHT", "SCARLETT SCOTT", "LEO GREEN", "CHLOE ADAMS", "AIDEN BAKER",
	"LILY NELSON", "MASON CARTER", "SOPHIE MITCHELL", "ETHAN ROBERTS", "ZOE TURNER",
	"ARCHIE PHILLIPS", "RUBY CAMPBELL", "JOSHUA PARKER", "FREYA EVANS", "LOGAN COLLINS",
	"AHMED ALI", "FATIMA KHAN", "MOHAMMED HASSAN", "LAILA ABDULLAH", "OMAR SAEED",
	"RAHUL SHARMA", "PRIYA PATEL", "ARJUN SINGH", "ANITA KUMAR", "VIKRAM DAS",
}

// StockPrizes are the prize texts used for generated entries
var StockPrizes = []string{
	"500 AED PREPAID GIFT CARD",
	"750 AED PREPAID GIFT CARD",
	"1000 AED PREPAID GIFT CARD",
}
