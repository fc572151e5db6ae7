package service

// DefaultNicknames es el pool builtin cuando el guild no configuró el suyo.
var DefaultNicknames = []string{
	// clásicos italianos
	"Gino Panino",
	"Mario Spaghetti",
	"Giuseppe Focaccia",
	"Peppino lo Scemo",
	"Il Magnifico",
	"Don Caciotta",
	"Signor Broccolo",
	"Zio Mortazza",
	"Nonna Furiosa",

	// absurdos en inglés
	"Captain Spaghetti",
	"Lord Farquaad's Cousin",
	"Definitely Not A Bot",
	"Someone's Mom",
	"Professional Overthinker",
	"Certified Chaos Agent",
	"A Sentient Potato",
	"FBI Agent #47",
	"Your WiFi Password",
	"404 Name Not Found",

	// nombres sueltos (malditos)
	"Kevin",
	"Greg",
	"Brenda",
	"Keith",
	"Nigel",
	"Gertrude",
	"Cletus",

	// crisis existencial
	"Who Am I",
	"Not Marco",
	"Wrong Person",
	"Identity Theft Victim",
	"Your Other Account",
	"The Impostor",
	"Witness Protection",

	// identidades comestibles
	"Human Lasagna",
	"Angry Mozzarella",
	"Escaped Raviolo",
	"Carbonara Incarnata",
	"Panino Imbottito",

	// títulos absurdos
	"CEO of Nothing",
	"Professional Screamer",
	"Local Cryptid",
	"That One Guy",
	"Your Mom's Favorite",
	"The Quiet One (lol)",
	"Main Character",
	"Background NPC",

	// fusión italo-inglesa
	"Ciao Bella Problems",
	"Molto Confused",
	"Mamma Mia Energy",
	"Pizza Time Specialist",
	"Espresso Depresso",
}
